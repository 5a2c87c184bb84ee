package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leaddesk/internal/models"
)

var created = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func sampleLeads() []models.Lead {
	return []models.Lead{
		{ID: "l1", CompanyName: "Acme", ContactPerson: "J. Doe", Email: "j@acme.com", Phone: "123",
			Application: "Vision System", Status: models.LeadNew, Source: models.SourceWebsite,
			CreatedBy: "u1", CreatedAt: created},
		{ID: "l2", CompanyName: "Globex", CreatedBy: "u2", AssignedTo: "u1", Status: models.LeadWon, CreatedAt: created},
		{ID: "l3", CompanyName: "Initech", CreatedBy: "u2", Status: models.LeadHold, CreatedAt: created},
	}
}

func sampleProposals() []models.Proposal {
	return []models.Proposal{
		{ID: "p1", LeadID: "l1", SpecFields: models.SpecFields{Robot: "R-2000iA/100P", Controller: "RJ3iB", Brand: "Fanuc", Cost: 251000},
			Status: models.ProposalDraft, CreatedBy: "u1", CreatedAt: created},
		{ID: "p2", LeadID: "l2", CreatedBy: "u2", CreatedAt: created},
		{ID: "p3", LeadID: "deleted", CreatedBy: "u1", CreatedAt: created},
	}
}

func ids[T models.Entity](items []T) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.GetID())
	}
	return out
}

func TestFilterAllReturnsInputUnchanged(t *testing.T) {
	leads := sampleLeads()
	got := FilterLeadsByUser(leads, All)
	assert.Equal(t, leads, got)
	assert.Same(t, &leads[0], &got[0], "same backing slice, same order")

	proposals := sampleProposals()
	assert.Equal(t, proposals, FilterProposalsByUser(proposals, All))
}

func TestFilterAsymmetry(t *testing.T) {
	assert.Equal(t, []string{"l1", "l2"}, ids(FilterLeadsByUser(sampleLeads(), "u1")), "created or assigned")
	assert.Equal(t, []string{"p1", "p3"}, ids(FilterProposalsByUser(sampleProposals(), "u1")), "created only")
	assert.Empty(t, FilterLeadsByUser(sampleLeads(), "nobody"))
}

func TestLeadsCSV(t *testing.T) {
	names := map[string]string{"u1": "Admin User"}
	csv := LeadsTable(sampleLeads()[:2], names).CSV()
	assert.Equal(t,
		"Company,Contact Person,Email,Phone,Application,Status,Source,Created By,Created Date\n"+
			"Acme,J. Doe,j@acme.com,123,Vision System,new,website,Admin User,2026-10-18\n"+
			"Globex,,,,,won,,Unknown,2026-10-18",
		csv)
}

func TestProposalsCSV(t *testing.T) {
	names := map[string]string{"u1": "Admin User", "u2": "Manager User"}
	csv := ProposalsTable(sampleProposals(), sampleLeads(), names).CSV()
	assert.Equal(t,
		"Lead Company,Robot,Controller,Brand,Cost,Status,Created By,Created Date\n"+
			"Acme,R-2000iA/100P,RJ3iB,Fanuc,251000,draft,Admin User,2026-10-18\n"+
			"Globex,,,,0,,Manager User,2026-10-18\n"+
			"Unknown,,,,0,,Admin User,2026-10-18",
		csv)
}

func TestEmptyExportIsHeaderOnly(t *testing.T) {
	assert.Equal(t,
		"Company,Contact Person,Email,Phone,Application,Status,Source,Created By,Created Date",
		LeadsTable(nil, nil).CSV())
	assert.Equal(t,
		"Lead Company,Robot,Controller,Brand,Cost,Status,Created By,Created Date",
		ProposalsTable(nil, nil, nil).CSV())
}

func TestCSVDoesNotEscape(t *testing.T) {
	leads := []models.Lead{{CompanyName: `Acme, "Inc"`, CreatedAt: created}}
	csv := LeadsTable(leads, nil).CSV()
	assert.Contains(t, csv, "\nAcme, \"Inc\",,")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "leads-report-2026-10-18.csv", Filename(TypeLeads, created, "csv"))
	assert.Equal(t, "proposals-report-2026-10-18.xlsx", Filename(TypeProposals, created, "xlsx"))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	earlierToday := time.Date(2026, 10, 18, 1, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 3)

	leads := sampleLeads()
	leads[0].FollowUps = []models.FollowUp{
		{NextFollowUp: &past},
		{NextFollowUp: &earlierToday},
		{NextFollowUp: &future},
		{},
	}

	s := Summarize(leads, sampleProposals(), now)
	assert.Equal(t, 3, s.TotalLeads)
	assert.Equal(t, 3, s.TotalProposals)
	assert.Equal(t, 1, s.WonLeads)
	assert.InDelta(t, 33.33, s.ConversionRate, 0.01)
	assert.Equal(t, 2, s.PendingFollowUps)

	assert.Equal(t, Summary{}, Summarize(nil, nil, now))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	table := LeadsTable(sampleLeads(), map[string]string{"u1": "Admin User"})
	require.NoError(t, WriteXLSX(&buf, "Leads", table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Leads"}, f.GetSheetList())
	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, leadHeaders, rows[0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "Admin User", rows[1][7])
}
