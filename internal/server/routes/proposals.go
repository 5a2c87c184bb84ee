package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
	"leaddesk/internal/proposals"
)

type ProposalRoutes struct {
	server ServerInterface
}

func NewProposalRoutes(server ServerInterface) *ProposalRoutes {
	return &ProposalRoutes{server: server}
}

func (pr *ProposalRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(pr.server)

	g := r.Group("/proposals")
	g.Use(middleware.AuthMiddleware())
	g.Use(middleware.RequireRole(auth.PermProposals))
	{
		g.GET("", pr.listHandler)
		g.POST("", pr.createHandler)
		g.GET("/:id", pr.getHandler)
		g.PUT("/:id", pr.updateHandler)
		g.DELETE("/:id", pr.deleteHandler)
		g.PUT("/:id/status", pr.statusHandler)
		g.GET("/:id/history", pr.historyHandler)
		g.POST("/:id/attachments", pr.attachmentsHandler)
	}
}

func (pr *ProposalRoutes) listHandler(c *gin.Context) {
	list, err := pr.server.Proposals().List(c.Request.Context(), proposals.ListFilter{
		Search: c.Query("search"),
		Status: models.ProposalStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (pr *ProposalRoutes) createHandler(c *gin.Context) {
	var in models.ProposalInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := pr.server.Proposals().CreateProposal(c.Request.Context(), in, currentUser(c).ID)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (pr *ProposalRoutes) getHandler(c *gin.Context) {
	p, err := pr.server.Proposals().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RevisionRequest is the body of a proposal edit. Changes may be left empty.
type RevisionRequest struct {
	models.ProposalInput
	Changes string `json:"changes"`
}

func (req RevisionRequest) revision(atts []models.Attachment, by string) proposals.Revision {
	return proposals.Revision{
		Fields:      req.ProposalInput,
		Changes:     req.Changes,
		Attachments: atts,
		ModifiedBy:  by,
	}
}

// updateHandler accepts either a JSON RevisionRequest or a multipart form
// whose "data" part holds the RevisionRequest and whose "files" parts are
// attached in the same revision.
func (pr *ProposalRoutes) updateHandler(c *gin.Context) {
	var req RevisionRequest
	var atts []models.Attachment
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid revision data JSON format"})
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form data"})
			return
		}
		if files := form.File["files"]; len(files) > 0 {
			// nothing is stored for a revision that would be rejected
			if err := pr.server.Proposals().CheckRevision(c.Request.Context(), c.Param("id"), req.revision(nil, "")); err != nil {
				respondError(c, pr.server.Logger(), err)
				return
			}
			var ok bool
			if atts, ok = receiveUploads(c, pr.server); !ok {
				return
			}
		}
	} else if !bindJSON(c, &req) {
		return
	}

	p, err := pr.server.Proposals().UpdateProposal(c.Request.Context(), c.Param("id"), req.revision(atts, currentUser(c).ID))
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pr *ProposalRoutes) deleteHandler(c *gin.Context) {
	if err := pr.server.Proposals().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (pr *ProposalRoutes) statusHandler(c *gin.Context) {
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := pr.server.Proposals().SetStatus(c.Request.Context(), c.Param("id"), models.ProposalStatus(req.Status))
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (pr *ProposalRoutes) historyHandler(c *gin.Context) {
	history, err := pr.server.Proposals().History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (pr *ProposalRoutes) attachmentsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := pr.server.Proposals().Get(ctx, id); err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}

	atts, ok := receiveUploads(c, pr.server)
	if !ok {
		return
	}
	p, err := pr.server.Proposals().AddAttachments(ctx, id, atts)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
