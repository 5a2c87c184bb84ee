package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/leads"
	"leaddesk/internal/models"
	"leaddesk/internal/storage"
)

type LeadRoutes struct {
	server ServerInterface
}

func NewLeadRoutes(server ServerInterface) *LeadRoutes {
	return &LeadRoutes{server: server}
}

func (lr *LeadRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(lr.server)

	g := r.Group("/leads")
	g.Use(middleware.AuthMiddleware())
	g.Use(middleware.RequireRole(auth.PermLeads))
	{
		g.GET("", lr.listHandler)
		g.POST("", lr.createHandler)
		g.GET("/:id", lr.getHandler)
		g.PUT("/:id", lr.updateHandler)
		g.DELETE("/:id", lr.deleteHandler)
		g.PUT("/:id/status", lr.statusHandler)
		g.PUT("/:id/assign", middleware.RequireRole(auth.PermAssignLead), lr.assignHandler)
		g.POST("/:id/memos", lr.memoHandler)
		g.POST("/:id/followups", lr.followUpHandler)
		g.POST("/:id/attachments", lr.attachmentsHandler)
	}
}

func (lr *LeadRoutes) listHandler(c *gin.Context) {
	list, err := lr.server.Leads().List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (lr *LeadRoutes) createHandler(c *gin.Context) {
	var in models.LeadInput
	if !bindJSON(c, &in) {
		return
	}
	lead, err := lr.server.Leads().CreateLead(c.Request.Context(), in, currentUser(c).ID)
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (lr *LeadRoutes) getHandler(c *gin.Context) {
	lead, err := lr.server.Leads().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (lr *LeadRoutes) updateHandler(c *gin.Context) {
	var in models.LeadInput
	if !bindJSON(c, &in) {
		return
	}
	lead, err := lr.server.Leads().UpdateLead(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (lr *LeadRoutes) deleteHandler(c *gin.Context) {
	if err := lr.server.Leads().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.Status(http.StatusNoContent)
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (lr *LeadRoutes) statusHandler(c *gin.Context) {
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := lr.server.Leads().UpdateStatus(c.Request.Context(), c.Param("id"), models.LeadStatus(req.Status))
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type AssignRequest struct {
	UserID string `json:"userId"`
}

func (lr *LeadRoutes) assignHandler(c *gin.Context) {
	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if req.UserID != "" {
		if _, err := lr.server.Users().Get(ctx, req.UserID); err != nil {
			respondError(c, lr.server.Logger(), err)
			return
		}
	}
	lead, err := lr.server.Leads().AssignLead(ctx, c.Param("id"), req.UserID, currentUser(c).ID)
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type MemoRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (lr *LeadRoutes) memoHandler(c *gin.Context) {
	var req MemoRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := lr.server.Leads().AddMemo(c.Request.Context(), c.Param("id"),
		models.MemoType(req.Type), req.Content, currentUser(c).ID)
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (lr *LeadRoutes) followUpHandler(c *gin.Context) {
	var in leads.FollowUpInput
	if !bindJSON(c, &in) {
		return
	}
	lead, err := lr.server.Leads().AddFollowUp(c.Request.Context(), c.Param("id"), in, currentUser(c).ID)
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (lr *LeadRoutes) attachmentsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := lr.server.Leads().Get(ctx, id); err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}

	atts, ok := receiveUploads(c, lr.server)
	if !ok {
		return
	}
	lead, err := lr.server.Leads().AddAttachments(ctx, id, atts)
	if err != nil {
		respondError(c, lr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// receiveUploads stores the "files" parts of a multipart request.
func receiveUploads(c *gin.Context, server ServerInterface) ([]models.Attachment, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form data"})
		return nil, false
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one file is required"})
		return nil, false
	}
	atts, err := storage.SaveUploads(c.Request.Context(), server.GetBlobStore(), files, currentUser(c).ID)
	if err != nil {
		respondError(c, server.Logger(), err)
		return nil, false
	}
	return atts, true
}
