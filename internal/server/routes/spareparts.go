package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
)

type SparePartRoutes struct {
	server ServerInterface
}

func NewSparePartRoutes(server ServerInterface) *SparePartRoutes {
	return &SparePartRoutes{server: server}
}

func (sr *SparePartRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(sr.server)

	parts := r.Group("/spare-parts")
	parts.Use(middleware.AuthMiddleware())
	parts.Use(middleware.RequireRole(auth.PermSpareParts))
	{
		parts.GET("", sr.listHandler)
		parts.POST("", sr.createHandler)
		parts.GET("/:id", sr.getHandler)
		parts.PUT("/:id", sr.updateHandler)
		parts.DELETE("/:id", sr.deleteHandler)
	}
}

func (sr *SparePartRoutes) listHandler(c *gin.Context) {
	list, err := sr.server.SpareParts().List(c.Request.Context())
	if err != nil {
		respondError(c, sr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (sr *SparePartRoutes) createHandler(c *gin.Context) {
	var in models.SparePartInput
	if !bindJSON(c, &in) {
		return
	}
	part, err := sr.server.SpareParts().Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, sr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, part)
}

func (sr *SparePartRoutes) getHandler(c *gin.Context) {
	part, err := sr.server.SpareParts().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, sr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (sr *SparePartRoutes) updateHandler(c *gin.Context) {
	var in models.SparePartInput
	if !bindJSON(c, &in) {
		return
	}
	part, err := sr.server.SpareParts().Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, sr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (sr *SparePartRoutes) deleteHandler(c *gin.Context) {
	if err := sr.server.SpareParts().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, sr.server.Logger(), err)
		return
	}
	c.Status(http.StatusNoContent)
}
