package reports

import (
	"io"
	"strings"

	"leaddesk/internal/models"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Source holds the collections a report is built from. Names maps user ids
// to display names.
type Source struct {
	Leads     []models.Lead
	Proposals []models.Proposal
	Names     map[string]string
}

// Build filters src by userID and renders the reportType table. Proposals
// resolve their company against every lead, not only the filtered ones.
func Build(reportType, userID string, src Source) (Table, error) {
	switch reportType {
	case TypeLeads:
		return LeadsTable(FilterLeadsByUser(src.Leads, userID), src.Names), nil
	case TypeProposals:
		return ProposalsTable(FilterProposalsByUser(src.Proposals, userID), src.Leads, src.Names), nil
	default:
		return Table{}, models.Invalid("type", "unknown report type %q", reportType)
	}
}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write renders t to w in format. The xlsx sheet is named after reportType.
func Write(w io.Writer, format, reportType string, t Table) error {
	switch format {
	case FormatCSV, "":
		_, err := io.WriteString(w, t.CSV())
		return err
	case FormatXLSX:
		return WriteXLSX(w, sheetName(reportType), t)
	default:
		return models.Invalid("format", "unknown format %q", format)
	}
}

func sheetName(reportType string) string {
	if reportType == "" {
		return "Report"
	}
	return strings.ToUpper(reportType[:1]) + reportType[1:]
}

// ValidFormat reports whether format can be passed to Write.
func ValidFormat(format string) bool {
	return format == FormatCSV || format == FormatXLSX
}
