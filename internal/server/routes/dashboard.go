package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/leads"
	"leaddesk/internal/models"
	"leaddesk/internal/reports"
)

const recentLimit = 5

type DashboardRoutes struct {
	server ServerInterface
}

func NewDashboardRoutes(server ServerInterface) *DashboardRoutes {
	return &DashboardRoutes{server: server}
}

func (dr *DashboardRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(dr.server)

	r.GET("/dashboard", middleware.AuthMiddleware(), middleware.RequireRole(auth.PermDashboard), dr.dashboardHandler)
}

type DashboardResponse struct {
	Summary         reports.Summary   `json:"summary"`
	RecentLeads     []models.Lead     `json:"recentLeads"`
	RecentProposals []models.Proposal `json:"recentProposals"`
	Reminders       []leads.Reminder  `json:"reminders"`
}

// dashboardHandler returns the home page numbers over the leads the user can
// see and the proposals written for them.
func (dr *DashboardRoutes) dashboardHandler(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)
	now := time.Now()

	visible, err := dr.server.Leads().List(ctx, user)
	if err != nil {
		respondError(c, dr.server.Logger(), err)
		return
	}
	all, err := dr.server.Proposals().All(ctx)
	if err != nil {
		respondError(c, dr.server.Logger(), err)
		return
	}
	leadIDs := make(map[string]bool, len(visible))
	for _, l := range visible {
		leadIDs[l.ID] = true
	}
	props := []models.Proposal{}
	for _, p := range all {
		if leadIDs[p.LeadID] {
			props = append(props, p)
		}
	}

	recentLeads, err := dr.server.Leads().Recent(ctx, user, recentLimit)
	if err != nil {
		respondError(c, dr.server.Logger(), err)
		return
	}
	reminders, err := dr.server.Leads().Reminders(ctx, user, now, recentLimit)
	if err != nil {
		respondError(c, dr.server.Logger(), err)
		return
	}

	recentProps := slices.Clone(props)
	slices.SortStableFunc(recentProps, func(a, b models.Proposal) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(recentProps) > recentLimit {
		recentProps = recentProps[:recentLimit]
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Summary:         reports.Summarize(visible, props, now),
		RecentLeads:     recentLeads,
		RecentProposals: recentProps,
		Reminders:       reminders,
	})
}
