// Package auth holds the role table that gates the dashboard, password
// handling for email login, and the OAuth providers used for social login.
package auth

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// OAuthConfig configures the goth providers.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	CallbackURL        string
	SessionSecret      string
	Secure             bool
}

// InitGothProviders registers the configured providers with goth and returns
// their names. With no client id configured nothing is registered and social
// login stays disabled.
func InitGothProviders(cfg OAuthConfig, logger *slog.Logger) []string {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 30, HttpOnly: true, Secure: cfg.Secure})
	gothic.Store = store

	var names []string
	if cfg.GoogleClientID != "" {
		goth.UseProviders(google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CallbackURL+"/google/callback", "email", "profile"))
		names = append(names, "google")
	}
	if logger != nil {
		logger.Info("oauth providers initialised", "providers", names)
	}
	return names
}
