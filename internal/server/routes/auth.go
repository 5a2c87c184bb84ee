package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"leaddesk/internal/auth"
	"leaddesk/internal/catalog"
	"leaddesk/internal/leads"
	"leaddesk/internal/metrics"
	"leaddesk/internal/models"
	"leaddesk/internal/proposals"
	"leaddesk/internal/storage"
	"leaddesk/internal/users"
)

type AuthRoutes struct {
	server ServerInterface
}

// ServerInterface is what the route groups need from the server.
type ServerInterface interface {
	Logger() *slog.Logger
	Metrics() *metrics.Metrics
	GetBlobStore() storage.BlobStore
	Leads() *leads.Service
	Proposals() *proposals.Service
	Templates() *catalog.Templates
	SpareParts() *catalog.SpareParts
	Users() *users.Service
	FrontendURL() string
	OAuthProviders() []string
}

func NewAuthRoutes(server ServerInterface) *AuthRoutes {
	return &AuthRoutes{server: server}
}

func (ar *AuthRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ar.server)

	r.POST("/login", ar.loginHandler)
	r.GET("/logout", ar.logoutHandler)
	r.POST("/logout", ar.logoutHandler)
	r.GET("/me", middleware.AuthMiddleware(), ar.meHandler)

	// OAuth routes
	r.GET("/auth/:provider", ar.authHandler)
	r.GET("/auth/:provider/callback", ar.authCallbackHandler)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ar *AuthRoutes) loginHandler(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := ar.server.Users().Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, models.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
		return
	}
	if err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}

	if err := ar.startSession(c, user); err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, meResponse(user))
}

func (ar *AuthRoutes) startSession(c *gin.Context, user models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUserRole, string(user.Role))
	if err := session.Save(); err != nil {
		return err
	}
	ar.server.Logger().InfoContext(c.Request.Context(), "user logged in", "user_id", user.ID, "role", user.Role)
	return nil
}

func (ar *AuthRoutes) logoutHandler(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

type MeResponse struct {
	User models.PublicUser `json:"user"`
	Menu []auth.MenuItem   `json:"menu"`
}

func meResponse(u models.User) MeResponse {
	return MeResponse{User: u.Public(), Menu: auth.VisibleMenu(u.Role)}
}

func (ar *AuthRoutes) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, meResponse(currentUser(c)))
}

func (ar *AuthRoutes) authHandler(c *gin.Context) {
	provider := c.Param("provider")
	if !slices.Contains(ar.server.OAuthProviders(), provider) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown login provider"})
		return
	}

	req := c.Request.Clone(c.Request.Context())
	req.URL.Path = "/auth/" + provider

	q := req.URL.Query()
	q.Add("provider", provider)
	req.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, req)
}

// authCallbackHandler completes the OAuth flow. Social login never creates
// accounts: the provider's email must belong to an active user.
func (ar *AuthRoutes) authCallbackHandler(c *gin.Context) {
	provider := c.Param("provider")
	if !slices.Contains(ar.server.OAuthProviders(), provider) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown login provider"})
		return
	}

	req := c.Request.Clone(c.Request.Context())
	req.URL.Path = "/auth/" + provider + "/callback"

	q := req.URL.Query()
	q.Add("provider", provider)
	req.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ar.server.Users().FindByEmail(c.Request.Context(), gothUser.Email)
	if errors.Is(err, models.ErrNotFound) || (err == nil && !user.IsActive) {
		ar.server.Logger().WarnContext(c.Request.Context(), "oauth login rejected",
			"provider", provider, "email", gothUser.Email)
		c.JSON(http.StatusForbidden, gin.H{"error": "No active account for this email"})
		return
	}
	if err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}

	if err := ar.startSession(c, user); err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, ar.server.FrontendURL()+"/dashboard")
}
