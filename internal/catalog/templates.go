// Package catalog manages the reference data proposals draw on: proposal
// templates and spare parts. Both are plain CRUD over their own collection;
// deleting an entry does not touch leads or proposals that reference it.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

// Templates manages the proposal templates collection.
type Templates struct {
	repo repository.Repository[models.ProposalTemplate]
	log  *slog.Logger
	now  func() time.Time
}

func NewTemplates(repo repository.Repository[models.ProposalTemplate], logger *slog.Logger) *Templates {
	if logger == nil {
		logger = slog.Default()
	}
	return &Templates{repo: repo, log: logger.With("component", "templates"), now: models.Now}
}

// Create stores a new template. Templates are active unless the input says
// otherwise.
func (t *Templates) Create(ctx context.Context, in models.TemplateInput, actorID string) (models.ProposalTemplate, error) {
	if err := in.Validate(); err != nil {
		return models.ProposalTemplate{}, err
	}
	tmpl := models.ProposalTemplate{ID: uuid.NewString(), CreatedAt: t.now(), CreatedBy: actorID}
	applyTemplateInput(&tmpl, in)
	if in.IsActive == nil {
		tmpl.IsActive = true
	}
	if err := t.repo.Insert(ctx, tmpl); err != nil {
		return models.ProposalTemplate{}, fmt.Errorf("create template: %w", err)
	}
	t.log.InfoContext(ctx, "template created", "template_id", tmpl.ID, "name", tmpl.Name)
	return tmpl, nil
}

// Update replaces the editable fields of a template, keeping id and creation
// metadata.
func (t *Templates) Update(ctx context.Context, id string, in models.TemplateInput) (models.ProposalTemplate, error) {
	if err := in.Validate(); err != nil {
		return models.ProposalTemplate{}, err
	}
	tmpl, err := t.repo.Update(ctx, id, func(tmpl *models.ProposalTemplate) error {
		applyTemplateInput(tmpl, in)
		return nil
	})
	if err != nil {
		return models.ProposalTemplate{}, fmt.Errorf("update template: %w", err)
	}
	return tmpl, nil
}

func applyTemplateInput(tmpl *models.ProposalTemplate, in models.TemplateInput) {
	tmpl.Name = strings.TrimSpace(in.Name)
	tmpl.SpecFields = in.SpecFields
	tmpl.HeaderContent = in.HeaderContent
	tmpl.FooterContent = in.FooterContent
	tmpl.Image = in.Image
	if in.IsActive != nil {
		tmpl.IsActive = *in.IsActive
	}
}

func (t *Templates) Get(ctx context.Context, id string) (models.ProposalTemplate, error) {
	return t.repo.Get(ctx, id)
}

func (t *Templates) List(ctx context.Context) ([]models.ProposalTemplate, error) {
	return t.repo.List(ctx)
}

func (t *Templates) Delete(ctx context.Context, id string) error {
	if err := t.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	t.log.InfoContext(ctx, "template deleted", "template_id", id)
	return nil
}
