package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"leaddesk/internal/auth"
	"leaddesk/internal/server/routes"
)

const sessionName = "leaddesk-session"

func (s *Server) RegisterRoutes() http.Handler {
	s.providers = auth.InitGothProviders(auth.OAuthConfig{
		GoogleClientID:     s.cfg.GoogleClientID,
		GoogleClientSecret: s.cfg.GoogleClientSecret,
		CallbackURL:        s.cfg.OAuthCallbackURL,
		SessionSecret:      s.cfg.SessionSecret,
		Secure:             s.cfg.Secure(),
	}, s.log)

	r := gin.New()
	r.Use(gin.Recovery())

	middleware := routes.NewMiddleware(s)
	r.Use(middleware.RequestLogger())

	store := cookie.NewStore([]byte(s.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   s.cfg.Secure(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.GET("/health", s.healthHandler)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	routes.NewAuthRoutes(s).RegisterRoutes(r)
	routes.NewDashboardRoutes(s).RegisterRoutes(r)
	routes.NewNotificationRoutes(s).RegisterRoutes(r)
	routes.NewLeadRoutes(s).RegisterRoutes(r)
	routes.NewProposalRoutes(s).RegisterRoutes(r)
	routes.NewTemplateRoutes(s).RegisterRoutes(r)
	routes.NewSparePartRoutes(s).RegisterRoutes(r)
	routes.NewUserRoutes(s).RegisterRoutes(r)
	routes.NewReportRoutes(s).RegisterRoutes(r)
	routes.NewAttachmentRoutes(s).RegisterRoutes(r)

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.db.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}
