package routes

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/reports"
)

type ReportRoutes struct {
	server ServerInterface
}

func NewReportRoutes(server ServerInterface) *ReportRoutes {
	return &ReportRoutes{server: server}
}

func (rr *ReportRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(rr.server)

	g := r.Group("/reports")
	g.Use(middleware.AuthMiddleware())
	g.Use(middleware.RequireRole(auth.PermReports))
	{
		g.GET("/summary", rr.summaryHandler)
		g.GET("/:type", rr.exportHandler)
	}
}

func (rr *ReportRoutes) source(ctx context.Context) (reports.Source, error) {
	leads, err := rr.server.Leads().All(ctx)
	if err != nil {
		return reports.Source{}, err
	}
	proposals, err := rr.server.Proposals().All(ctx)
	if err != nil {
		return reports.Source{}, err
	}
	names, err := rr.server.Users().Names(ctx)
	if err != nil {
		return reports.Source{}, err
	}
	return reports.Source{Leads: leads, Proposals: proposals, Names: names}, nil
}

// summaryHandler returns the headline numbers, optionally narrowed with
// ?user=<id>.
func (rr *ReportRoutes) summaryHandler(c *gin.Context) {
	src, err := rr.source(c.Request.Context())
	if err != nil {
		respondError(c, rr.server.Logger(), err)
		return
	}
	user := c.DefaultQuery("user", reports.All)
	summary := reports.Summarize(
		reports.FilterLeadsByUser(src.Leads, user),
		reports.FilterProposalsByUser(src.Proposals, user),
		time.Now(),
	)
	c.JSON(http.StatusOK, summary)
}

// exportHandler streams /reports/<leads|proposals>?user=&format=csv|xlsx as
// a download.
func (rr *ReportRoutes) exportHandler(c *gin.Context) {
	reportType := c.Param("type")
	format := c.DefaultQuery("format", reports.FormatCSV)
	if !reports.ValidFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	src, err := rr.source(c.Request.Context())
	if err != nil {
		respondError(c, rr.server.Logger(), err)
		return
	}
	table, err := reports.Build(reportType, c.DefaultQuery("user", reports.All), src)
	if err != nil {
		respondError(c, rr.server.Logger(), err)
		return
	}

	var buf bytes.Buffer
	if err := reports.Write(&buf, format, reportType, table); err != nil {
		respondError(c, rr.server.Logger(), err)
		return
	}
	rr.server.Metrics().ReportExported(reportType, format)
	rr.server.Logger().InfoContext(c.Request.Context(), "report exported",
		"type", reportType, "format", format, "rows", len(table.Rows), "user_id", currentUser(c).ID)

	filename := reports.Filename(reportType, time.Now(), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, reports.ContentType(format), buf.Bytes())
}
