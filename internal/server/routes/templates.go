package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
)

type TemplateRoutes struct {
	server ServerInterface
}

func NewTemplateRoutes(server ServerInterface) *TemplateRoutes {
	return &TemplateRoutes{server: server}
}

func (tr *TemplateRoutes) RegisterRoutes(r *gin.Engine) {
	// Create middleware instance
	middleware := NewMiddleware(tr.server)

	templates := r.Group("/templates")
	templates.Use(middleware.AuthMiddleware())
	templates.Use(middleware.RequireRole(auth.PermTemplates))
	{
		templates.POST("", tr.createTemplateHandler)
		templates.GET("", tr.listTemplatesHandler)
		templates.GET("/:templateID", tr.getTemplateHandler)
		templates.PUT("/:templateID", tr.updateTemplateHandler)
		templates.DELETE("/:templateID", tr.deleteTemplateHandler)
		templates.GET("/:templateID/apply", tr.applyTemplateHandler)
	}
}

func (tr *TemplateRoutes) createTemplateHandler(c *gin.Context) {
	var in models.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	tmpl, err := tr.server.Templates().Create(c.Request.Context(), in, currentUser(c).ID)
	if err != nil {
		respondError(c, tr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

// listTemplatesHandler returns every template; ?active=true keeps only the
// ones offered when creating a proposal.
func (tr *TemplateRoutes) listTemplatesHandler(c *gin.Context) {
	list, err := tr.server.Templates().List(c.Request.Context())
	if err != nil {
		respondError(c, tr.server.Logger(), err)
		return
	}
	if c.Query("active") == "true" {
		active := []models.ProposalTemplate{}
		for _, t := range list {
			if t.IsActive {
				active = append(active, t)
			}
		}
		list = active
	}
	c.JSON(http.StatusOK, list)
}

func (tr *TemplateRoutes) getTemplateHandler(c *gin.Context) {
	tmpl, err := tr.server.Templates().Get(c.Request.Context(), c.Param("templateID"))
	if err != nil {
		respondError(c, tr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (tr *TemplateRoutes) updateTemplateHandler(c *gin.Context) {
	var in models.TemplateInput
	if !bindJSON(c, &in) {
		return
	}
	tmpl, err := tr.server.Templates().Update(c.Request.Context(), c.Param("templateID"), in)
	if err != nil {
		respondError(c, tr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (tr *TemplateRoutes) deleteTemplateHandler(c *gin.Context) {
	if err := tr.server.Templates().Delete(c.Request.Context(), c.Param("templateID")); err != nil {
		respondError(c, tr.server.Logger(), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// applyTemplateHandler returns the spec fields a proposal form should take
// from the template.
func (tr *TemplateRoutes) applyTemplateHandler(c *gin.Context) {
	fields, ok, err := tr.server.Proposals().ApplyTemplate(c.Request.Context(), c.Param("templateID"))
	if err != nil {
		respondError(c, tr.server.Logger(), err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, fields)
}
