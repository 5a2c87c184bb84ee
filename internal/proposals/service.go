// Package proposals manages equipment proposals and their edit history.
//
// A proposal starts at version 1 with an empty history. Each edit appends one
// ProposalHistory entry carrying the next version, so Version is always
// len(History)+1 and history entries are never changed or reordered.
package proposals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"leaddesk/internal/metrics"
	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

// LeadReader resolves the leads proposals point at.
type LeadReader interface {
	Get(ctx context.Context, id string) (models.Lead, error)
	List(ctx context.Context) ([]models.Lead, error)
}

// TemplateReader resolves proposal templates.
type TemplateReader interface {
	Get(ctx context.Context, id string) (models.ProposalTemplate, error)
}

// Service manages the proposals collection.
type Service struct {
	proposals repository.Repository[models.Proposal]
	leads     LeadReader
	templates TemplateReader
	log       *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService returns a Service. logger and m may be nil.
func NewService(
	proposals repository.Repository[models.Proposal],
	leads LeadReader,
	templates TemplateReader,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		proposals: proposals,
		leads:     leads,
		templates: templates,
		log:       logger.With("component", "proposals"),
		metrics:   m,
		now:       models.Now,
	}
}

// Revision is one edit of an existing proposal.
type Revision struct {
	Fields models.ProposalInput
	// Changes summarizes the edit. Empty means "Updated proposal: <robot> <controller>".
	Changes     string
	Attachments []models.Attachment
	ModifiedBy  string
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Search string
	Status models.ProposalStatus
}

// CreateProposal stores a draft proposal at version 1 for an existing lead.
func (s *Service) CreateProposal(ctx context.Context, in models.ProposalInput, actorID string) (models.Proposal, error) {
	if strings.TrimSpace(in.LeadID) == "" {
		return models.Proposal{}, models.Invalid("leadId", "is required")
	}
	if err := in.SpecFields.Validate(); err != nil {
		return models.Proposal{}, err
	}
	if _, err := s.leads.Get(ctx, in.LeadID); err != nil {
		return models.Proposal{}, fmt.Errorf("create proposal: %w", err)
	}

	now := s.now()
	p := models.Proposal{
		ID:         uuid.NewString(),
		LeadID:     in.LeadID,
		TemplateID: in.TemplateID,
		SpecFields: trimSpec(in.SpecFields),
		SpareParts: in.SpareParts,
		Status:     models.ProposalDraft,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  actorID,
	}
	p.Normalize()

	if err := s.proposals.Insert(ctx, p); err != nil {
		return models.Proposal{}, fmt.Errorf("create proposal: %w", err)
	}
	s.metrics.ProposalCreated()
	s.log.InfoContext(ctx, "proposal created", "proposal_id", p.ID, "lead_id", p.LeadID, "created_by", actorID)
	return p, nil
}

// CheckRevision reports the error UpdateProposal would return for rev
// without changing anything.
func (s *Service) CheckRevision(ctx context.Context, id string, rev Revision) error {
	if err := rev.Fields.SpecFields.Validate(); err != nil {
		return err
	}
	p, err := s.proposals.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	return rev.checkLead(p)
}

func (rev Revision) checkLead(p models.Proposal) error {
	if rev.Fields.LeadID != "" && rev.Fields.LeadID != p.LeadID {
		return models.Invalid("leadId", "cannot change after creation")
	}
	return nil
}

// UpdateProposal replaces the spec fields, appends a history entry with the
// next version and appends any new attachments. The lead cannot change. A
// non-empty templateId replaces the recorded one.
func (s *Service) UpdateProposal(ctx context.Context, id string, rev Revision) (models.Proposal, error) {
	if err := rev.Fields.SpecFields.Validate(); err != nil {
		return models.Proposal{}, err
	}
	fields := trimSpec(rev.Fields.SpecFields)
	changes := strings.TrimSpace(rev.Changes)
	if changes == "" {
		changes = DefaultChanges(fields)
	}

	p, err := s.proposals.Update(ctx, id, func(p *models.Proposal) error {
		if err := rev.checkLead(*p); err != nil {
			return err
		}
		now := s.now()
		next := p.Version + 1
		p.History = append(p.History, models.ProposalHistory{
			ID:         uuid.NewString(),
			Version:    next,
			Changes:    changes,
			ModifiedBy: rev.ModifiedBy,
			ModifiedAt: now,
		})
		p.Version = next
		p.SpecFields = fields
		if rev.Fields.TemplateID != "" {
			p.TemplateID = rev.Fields.TemplateID
		}
		if rev.Fields.SpareParts != nil {
			p.SpareParts = rev.Fields.SpareParts
		}
		p.Attachments = append(p.Attachments, rev.Attachments...)
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Proposal{}, fmt.Errorf("update proposal: %w", err)
	}
	s.metrics.ProposalRevised()
	s.log.InfoContext(ctx, "proposal revised", "proposal_id", id, "version", p.Version, "modified_by", rev.ModifiedBy)
	return p, nil
}

// DefaultChanges is the summary recorded when an edit gives none.
func DefaultChanges(f models.SpecFields) string {
	return fmt.Sprintf("Updated proposal: %s %s", f.Robot, f.Controller)
}

// ApplyTemplate returns the spec fields of a template for the caller to merge
// into its form. It reports false when the template does not exist.
func (s *Service) ApplyTemplate(ctx context.Context, templateID string) (models.SpecFields, bool, error) {
	t, err := s.templates.Get(ctx, templateID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.SpecFields{}, false, nil
		}
		return models.SpecFields{}, false, fmt.Errorf("apply template: %w", err)
	}
	return t.SpecFields, true, nil
}

// SetStatus changes the proposal status. Version and history are untouched.
func (s *Service) SetStatus(ctx context.Context, id string, status models.ProposalStatus) (models.Proposal, error) {
	if !status.Valid() {
		return models.Proposal{}, models.Invalid("status", "unknown status %q", status)
	}
	p, err := s.proposals.Update(ctx, id, func(p *models.Proposal) error {
		p.Status = status
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Proposal{}, fmt.Errorf("set proposal status: %w", err)
	}
	s.log.InfoContext(ctx, "proposal status changed", "proposal_id", id, "status", status)
	return p, nil
}

// AddAttachments appends stored attachments without creating a revision.
func (s *Service) AddAttachments(ctx context.Context, id string, atts []models.Attachment) (models.Proposal, error) {
	p, err := s.proposals.Update(ctx, id, func(p *models.Proposal) error {
		p.Attachments = append(p.Attachments, atts...)
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Proposal{}, fmt.Errorf("add proposal attachments: %w", err)
	}
	return p, nil
}

// Get returns a proposal by id.
func (s *Service) Get(ctx context.Context, id string) (models.Proposal, error) {
	return s.proposals.Get(ctx, id)
}

// History returns the audit trail of a proposal in edit order.
func (s *Service) History(ctx context.Context, id string) ([]models.ProposalHistory, error) {
	p, err := s.proposals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.History, nil
}

// All returns every proposal in stored order.
func (s *Service) All(ctx context.Context) ([]models.Proposal, error) {
	return s.proposals.List(ctx)
}

// List returns the proposals matching f. Search is case-insensitive over
// robot, brand and the lead's company and contact.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Proposal, error) {
	all, err := s.proposals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	if search == "" && f.Status == "" {
		return all, nil
	}

	leadsByID := map[string]models.Lead{}
	if search != "" {
		leads, err := s.leads.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list proposals: %w", err)
		}
		for _, l := range leads {
			leadsByID[l.ID] = l
		}
	}

	out := []models.Proposal{}
	for _, p := range all {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if search != "" {
			lead := leadsByID[p.LeadID]
			if !containsFold(search, p.Robot, p.Brand, lead.CompanyName, lead.ContactPerson) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Delete removes a proposal.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.proposals.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	s.log.InfoContext(ctx, "proposal deleted", "proposal_id", id)
	return nil
}

func containsFold(needle string, haystack ...string) bool {
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func trimSpec(f models.SpecFields) models.SpecFields {
	f.Robot = strings.TrimSpace(f.Robot)
	f.Controller = strings.TrimSpace(f.Controller)
	f.Reach = strings.TrimSpace(f.Reach)
	f.Payload = strings.TrimSpace(f.Payload)
	f.Brand = strings.TrimSpace(f.Brand)
	return f
}
