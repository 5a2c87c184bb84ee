// Package reports filters, summarizes and exports the lead and proposal
// collections.
//
// CSV output joins values with commas and does not quote or escape them, so a
// value containing a comma shifts the columns of its row.
package reports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"leaddesk/internal/models"
)

// All selects every record in the user filters.
const All = "all"

// Report types.
const (
	TypeLeads     = "leads"
	TypeProposals = "proposals"
)

const dateLayout = "2006-01-02"

var (
	leadHeaders     = []string{"Company", "Contact Person", "Email", "Phone", "Application", "Status", "Source", "Created By", "Created Date"}
	proposalHeaders = []string{"Lead Company", "Robot", "Controller", "Brand", "Cost", "Status", "Created By", "Created Date"}
)

// FilterLeadsByUser returns the leads created by or assigned to userID. For
// All the input is returned unchanged.
func FilterLeadsByUser(leads []models.Lead, userID string) []models.Lead {
	if userID == All || userID == "" {
		return leads
	}
	out := []models.Lead{}
	for _, l := range leads {
		if l.CreatedBy == userID || l.AssignedTo == userID {
			out = append(out, l)
		}
	}
	return out
}

// FilterProposalsByUser returns the proposals created by userID. Unlike leads,
// assignment plays no part. For All the input is returned unchanged.
func FilterProposalsByUser(proposals []models.Proposal, userID string) []models.Proposal {
	if userID == All || userID == "" {
		return proposals
	}
	out := []models.Proposal{}
	for _, p := range proposals {
		if p.CreatedBy == userID {
			out = append(out, p)
		}
	}
	return out
}

// Table is a report as a header row and value rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

func userName(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return "Unknown"
}

// LeadsTable renders leads in the lead report layout. names maps user ids to
// display names.
func LeadsTable(leads []models.Lead, names map[string]string) Table {
	t := Table{Headers: leadHeaders, Rows: make([][]string, 0, len(leads))}
	for _, l := range leads {
		t.Rows = append(t.Rows, []string{
			l.CompanyName,
			l.ContactPerson,
			l.Email,
			l.Phone,
			l.Application,
			string(l.Status),
			string(l.Source),
			userName(names, l.CreatedBy),
			l.CreatedAt.Format(dateLayout),
		})
	}
	return t
}

// ProposalsTable renders proposals in the proposal report layout. Proposals
// whose lead is gone show "Unknown" as the company.
func ProposalsTable(proposals []models.Proposal, leads []models.Lead, names map[string]string) Table {
	companies := make(map[string]string, len(leads))
	for _, l := range leads {
		companies[l.ID] = l.CompanyName
	}
	t := Table{Headers: proposalHeaders, Rows: make([][]string, 0, len(proposals))}
	for _, p := range proposals {
		company := companies[p.LeadID]
		if company == "" {
			company = "Unknown"
		}
		t.Rows = append(t.Rows, []string{
			company,
			p.Robot,
			p.Controller,
			p.Brand,
			strconv.FormatFloat(p.Cost, 'f', -1, 64),
			string(p.Status),
			userName(names, p.CreatedBy),
			p.CreatedAt.Format(dateLayout),
		})
	}
	return t
}

// CSV joins the table with commas and newlines, without escaping.
func (t Table) CSV() string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Headers, ","))
	for _, row := range t.Rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

// Filename returns "<type>-report-<YYYY-MM-DD>.<ext>".
func Filename(reportType string, now time.Time, ext string) string {
	return fmt.Sprintf("%s-report-%s.%s", reportType, now.Format(dateLayout), ext)
}

// Summary is the headline numbers of the reports page.
type Summary struct {
	TotalLeads       int     `json:"totalLeads"`
	TotalProposals   int     `json:"totalProposals"`
	WonLeads         int     `json:"wonLeads"`
	ConversionRate   float64 `json:"conversionRate"`
	PendingFollowUps int     `json:"pendingFollowUps"`
}

// Summarize counts leads and proposals. ConversionRate is the percentage of
// leads won. PendingFollowUps counts follow-ups whose next date is today or
// later.
func Summarize(leads []models.Lead, proposals []models.Proposal, now time.Time) Summary {
	s := Summary{TotalLeads: len(leads), TotalProposals: len(proposals)}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, l := range leads {
		if l.Status == models.LeadWon {
			s.WonLeads++
		}
		for _, f := range l.FollowUps {
			if f.NextFollowUp != nil && !f.NextFollowUp.Before(today) {
				s.PendingFollowUps++
			}
		}
	}
	if s.TotalLeads > 0 {
		s.ConversionRate = float64(s.WonLeads) / float64(s.TotalLeads) * 100
	}
	return s
}
