// Package seed writes the bundled sample users, spare parts and proposal
// template into empty collections.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"leaddesk/internal/auth"
	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

//go:embed seed.yaml
var defaultSeed []byte

// Data is the decoded seed file.
type Data struct {
	Users      []User      `yaml:"users"`
	SpareParts []SparePart `yaml:"spare_parts"`
	Templates  []Template  `yaml:"templates"`
}

type User struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Email    string      `yaml:"email"`
	Phone    string      `yaml:"phone"`
	Role     models.Role `yaml:"role"`
	Password string      `yaml:"password"`
}

type SparePart struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	PartNumber    string   `yaml:"part_number"`
	Description   string   `yaml:"description"`
	Cost          float64  `yaml:"cost"`
	Compatibility []string `yaml:"compatibility"`
}

type Template struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Robot       string  `yaml:"robot"`
	Controller  string  `yaml:"controller"`
	Reach       string  `yaml:"reach"`
	Payload     string  `yaml:"payload"`
	Brand       string  `yaml:"brand"`
	Cost        float64 `yaml:"cost"`
	Description string  `yaml:"description"`
	Header      string  `yaml:"header"`
	Footer      string  `yaml:"footer"`
	CreatedBy   string  `yaml:"created_by"`
}

// Default decodes the bundled seed file.
func Default() (*Data, error) {
	return Parse(defaultSeed)
}

// Parse decodes a seed file.
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for _, u := range d.Users {
		if !u.Role.Valid() {
			return nil, fmt.Errorf("parse seed: user %s has unknown role %q", u.ID, u.Role)
		}
	}
	return &d, nil
}

// Targets are the collections the seed writes to.
type Targets struct {
	Users      repository.Repository[models.User]
	SpareParts repository.Repository[models.SparePart]
	Templates  repository.Repository[models.ProposalTemplate]
}

// Result reports how many records each collection received.
type Result struct {
	Users      int
	SpareParts int
	Templates  int
}

// Apply writes d into every target collection that is currently empty.
// Non-empty collections are left alone.
func Apply(ctx context.Context, t Targets, d *Data, passwords auth.Passwords, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if passwords == nil {
		passwords = auth.PlainPasswords{}
	}
	now := models.Now()
	var res Result

	users := make([]models.User, 0, len(d.Users))
	for _, u := range d.Users {
		hash, err := passwords.Hash(u.Password)
		if err != nil {
			return res, err
		}
		users = append(users, models.User{
			ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role,
			Password: hash, IsActive: true, CreatedAt: now,
		})
	}
	n, err := fillEmpty(ctx, t.Users, users)
	if err != nil {
		return res, fmt.Errorf("seed users: %w", err)
	}
	res.Users = n

	parts := make([]models.SparePart, 0, len(d.SpareParts))
	for _, p := range d.SpareParts {
		part := models.SparePart{
			ID: p.ID, Name: p.Name, PartNumber: p.PartNumber, Description: p.Description,
			Cost: p.Cost, Compatibility: p.Compatibility, CreatedAt: now,
		}
		part.Normalize()
		parts = append(parts, part)
	}
	if res.SpareParts, err = fillEmpty(ctx, t.SpareParts, parts); err != nil {
		return res, fmt.Errorf("seed spare parts: %w", err)
	}

	templates := make([]models.ProposalTemplate, 0, len(d.Templates))
	for _, tm := range d.Templates {
		templates = append(templates, models.ProposalTemplate{
			ID:   tm.ID,
			Name: tm.Name,
			SpecFields: models.SpecFields{
				Robot: tm.Robot, Controller: tm.Controller, Reach: tm.Reach, Payload: tm.Payload,
				Brand: tm.Brand, Cost: tm.Cost, Description: tm.Description,
			},
			HeaderContent: tm.Header,
			FooterContent: tm.Footer,
			IsActive:      true,
			CreatedAt:     now,
			CreatedBy:     tm.CreatedBy,
		})
	}
	if res.Templates, err = fillEmpty(ctx, t.Templates, templates); err != nil {
		return res, fmt.Errorf("seed templates: %w", err)
	}

	logger.InfoContext(ctx, "seed applied", "users", res.Users, "spare_parts", res.SpareParts, "templates", res.Templates)
	return res, nil
}

func fillEmpty[T models.Entity](ctx context.Context, repo repository.Repository[T], items []T) (int, error) {
	if repo == nil {
		return 0, nil
	}
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	if err := repo.Replace(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
