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

// SpareParts manages the spare parts collection.
type SpareParts struct {
	repo repository.Repository[models.SparePart]
	log  *slog.Logger
	now  func() time.Time
}

func NewSpareParts(repo repository.Repository[models.SparePart], logger *slog.Logger) *SpareParts {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpareParts{repo: repo, log: logger.With("component", "spare_parts"), now: models.Now}
}

func (s *SpareParts) Create(ctx context.Context, in models.SparePartInput) (models.SparePart, error) {
	if err := in.Validate(); err != nil {
		return models.SparePart{}, err
	}
	part := models.SparePart{ID: uuid.NewString(), CreatedAt: s.now()}
	applySparePartInput(&part, in)
	if err := s.repo.Insert(ctx, part); err != nil {
		return models.SparePart{}, fmt.Errorf("create spare part: %w", err)
	}
	s.log.InfoContext(ctx, "spare part created", "spare_part_id", part.ID, "part_number", part.PartNumber)
	return part, nil
}

func (s *SpareParts) Update(ctx context.Context, id string, in models.SparePartInput) (models.SparePart, error) {
	if err := in.Validate(); err != nil {
		return models.SparePart{}, err
	}
	part, err := s.repo.Update(ctx, id, func(p *models.SparePart) error {
		applySparePartInput(p, in)
		return nil
	})
	if err != nil {
		return models.SparePart{}, fmt.Errorf("update spare part: %w", err)
	}
	return part, nil
}

func applySparePartInput(p *models.SparePart, in models.SparePartInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.PartNumber = strings.TrimSpace(in.PartNumber)
	p.Description = in.Description
	p.Cost = in.Cost
	p.Compatibility = []string(in.Compatibility)
	p.Image = in.Image
	p.Normalize()
}

func (s *SpareParts) Get(ctx context.Context, id string) (models.SparePart, error) {
	return s.repo.Get(ctx, id)
}

func (s *SpareParts) List(ctx context.Context) ([]models.SparePart, error) {
	return s.repo.List(ctx)
}

// Delete removes a spare part. Ids held by leads and proposals are left
// dangling.
func (s *SpareParts) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete spare part: %w", err)
	}
	s.log.InfoContext(ctx, "spare part deleted", "spare_part_id", id)
	return nil
}
