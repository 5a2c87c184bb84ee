package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
)

type UserRoutes struct {
	server ServerInterface
}

func NewUserRoutes(server ServerInterface) *UserRoutes {
	return &UserRoutes{server: server}
}

func (ur *UserRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ur.server)

	// Display names for every signed-in user, used to label assignees.
	r.GET("/users/names", middleware.AuthMiddleware(), ur.namesHandler)

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	users.Use(middleware.RequireRole(auth.PermUsers))
	{
		users.GET("", ur.listHandler)
		users.POST("", ur.createHandler)
		users.GET("/:id", ur.getHandler)
		users.PUT("/:id", ur.updateHandler)
		users.DELETE("/:id", ur.deleteHandler)
	}
}

func publicUsers(list []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}
	return out
}

func (ur *UserRoutes) namesHandler(c *gin.Context) {
	names, err := ur.server.Users().Names(c.Request.Context())
	if err != nil {
		respondError(c, ur.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (ur *UserRoutes) listHandler(c *gin.Context) {
	list, err := ur.server.Users().List(c.Request.Context())
	if err != nil {
		respondError(c, ur.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, publicUsers(list))
}

func (ur *UserRoutes) createHandler(c *gin.Context) {
	var in models.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := ur.server.Users().Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, ur.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, user.Public())
}

func (ur *UserRoutes) getHandler(c *gin.Context) {
	user, err := ur.server.Users().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, ur.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (ur *UserRoutes) updateHandler(c *gin.Context) {
	var in models.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := ur.server.Users().Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, ur.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (ur *UserRoutes) deleteHandler(c *gin.Context) {
	id := c.Param("id")
	if id == currentUser(c).ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := ur.server.Users().Delete(c.Request.Context(), id); err != nil {
		respondError(c, ur.server.Logger(), err)
		return
	}
	c.Status(http.StatusNoContent)
}
