// Package leads manages the lead lifecycle: creation, permissive status
// changes, assignment and the append-only memo and follow-up logs.
package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"leaddesk/internal/metrics"
	"leaddesk/internal/models"
	"leaddesk/internal/repository"
)

// Service manages the leads collection.
type Service struct {
	leads   repository.Repository[models.Lead]
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService returns a Service over leads. logger and m may be nil.
func NewService(leads repository.Repository[models.Lead], logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		leads:   leads,
		log:     logger.With("component", "leads"),
		metrics: m,
		now:     models.Now,
	}
}

// FollowUpInput is a follow-up as entered by the user. A zero Date means
// today.
type FollowUpInput struct {
	Date         time.Time  `json:"date"`
	Notes        string     `json:"notes"`
	NextFollowUp *time.Time `json:"nextFollowUp"`
}

// UnmarshalJSON accepts dates as YYYY-MM-DD or RFC 3339.
func (in *FollowUpInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Date         string `json:"date"`
		Notes        string `json:"notes"`
		NextFollowUp string `json:"nextFollowUp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	date, err := models.ParseDate("date", raw.Date)
	if err != nil {
		return err
	}
	next, err := models.ParseDate("nextFollowUp", raw.NextFollowUp)
	if err != nil {
		return err
	}
	*in = FollowUpInput{Date: date, Notes: raw.Notes}
	if !next.IsZero() {
		in.NextFollowUp = &next
	}
	return nil
}

// CreateLead stores a new lead with status new and empty logs.
func (s *Service) CreateLead(ctx context.Context, in models.LeadInput, actorID string) (models.Lead, error) {
	if err := in.Validate(); err != nil {
		return models.Lead{}, err
	}
	now := s.now()
	lead := models.Lead{
		ID:            uuid.NewString(),
		CompanyName:   strings.TrimSpace(in.CompanyName),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Application:   strings.TrimSpace(in.Application),
		Source:        in.Source,
		Status:        models.LeadNew,
		SpareParts:    in.SpareParts,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     actorID,
	}
	lead.Normalize()

	if err := s.leads.Insert(ctx, lead); err != nil {
		return models.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	s.metrics.LeadCreated()
	s.log.InfoContext(ctx, "lead created", "lead_id", lead.ID, "company", lead.CompanyName, "created_by", actorID)
	return lead, nil
}

// UpdateLead replaces the contact, application, source and spare part
// fields. Status, logs and attachments are kept.
func (s *Service) UpdateLead(ctx context.Context, id string, in models.LeadInput) (models.Lead, error) {
	if err := in.Validate(); err != nil {
		return models.Lead{}, err
	}
	lead, err := s.leads.Update(ctx, id, func(l *models.Lead) error {
		l.CompanyName = strings.TrimSpace(in.CompanyName)
		l.ContactPerson = strings.TrimSpace(in.ContactPerson)
		l.Email = strings.TrimSpace(in.Email)
		l.Phone = strings.TrimSpace(in.Phone)
		l.Application = strings.TrimSpace(in.Application)
		l.Source = in.Source
		if in.SpareParts != nil {
			l.SpareParts = in.SpareParts
		}
		l.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// UpdateStatus moves a lead to any enumerated status. No transition order is
// enforced.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (models.Lead, error) {
	if !status.Valid() {
		return models.Lead{}, models.Invalid("status", "unknown status %q", status)
	}
	var from models.LeadStatus
	lead, err := s.leads.Update(ctx, id, func(l *models.Lead) error {
		from = l.Status
		l.Status = status
		l.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	s.metrics.LeadStatusChanged(string(status))
	s.log.InfoContext(ctx, "lead status changed", "lead_id", id, "from", from, "to", status)
	return lead, nil
}

// AssignLead records who the lead is assigned to and who assigned it. Role
// checks belong to the caller.
func (s *Service) AssignLead(ctx context.Context, id, userID, byUserID string) (models.Lead, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Lead{}, models.Invalid("assignedTo", "is required")
	}
	lead, err := s.leads.Update(ctx, id, func(l *models.Lead) error {
		l.AssignedTo = userID
		l.AssignedBy = byUserID
		l.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("assign lead: %w", err)
	}
	s.log.InfoContext(ctx, "lead assigned", "lead_id", id, "assigned_to", userID, "assigned_by", byUserID)
	return lead, nil
}

// AddMemo appends a memo to the lead.
func (s *Service) AddMemo(ctx context.Context, id string, memoType models.MemoType, content, actorID string) (models.Lead, error) {
	if !memoType.Valid() {
		return models.Lead{}, models.Invalid("type", "unknown memo type %q", memoType)
	}
	if strings.TrimSpace(content) == "" {
		return models.Lead{}, models.Invalid("content", "is required")
	}
	now := s.now()
	lead, err := s.leads.Update(ctx, id, func(l *models.Lead) error {
		l.Memos = append(l.Memos, models.Memo{
			ID:        uuid.NewString(),
			Type:      memoType,
			Content:   strings.TrimSpace(content),
			CreatedAt: now,
			CreatedBy: actorID,
		})
		l.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("add memo: %w", err)
	}
	return lead, nil
}

// AddFollowUp appends a follow-up to the lead.
func (s *Service) AddFollowUp(ctx context.Context, id string, in FollowUpInput, actorID string) (models.Lead, error) {
	if strings.TrimSpace(in.Notes) == "" {
		return models.Lead{}, models.Invalid("notes", "is required")
	}
	now := s.now()
	if in.Date.IsZero() {
		in.Date = now
	}
	lead, err := s.leads.Update(ctx, id, func(l *models.Lead) error {
		l.FollowUps = append(l.FollowUps, models.FollowUp{
			ID:           uuid.NewString(),
			Date:         in.Date,
			Notes:        strings.TrimSpace(in.Notes),
			NextFollowUp: in.NextFollowUp,
			CreatedAt:    now,
			CreatedBy:    actorID,
		})
		l.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("add follow-up: %w", err)
	}
	return lead, nil
}

// AddAttachments appends stored attachments to the lead.
func (s *Service) AddAttachments(ctx context.Context, id string, atts []models.Attachment) (models.Lead, error) {
	lead, err := s.leads.Update(ctx, id, func(l *models.Lead) error {
		l.Attachments = append(l.Attachments, atts...)
		l.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.Lead{}, fmt.Errorf("add lead attachments: %w", err)
	}
	return lead, nil
}

// Get returns a lead by id.
func (s *Service) Get(ctx context.Context, id string) (models.Lead, error) {
	return s.leads.Get(ctx, id)
}

// List returns the leads visible to viewer. Engineers only see leads assigned
// to them; everyone else sees the whole collection.
func (s *Service) List(ctx context.Context, viewer models.User) ([]models.Lead, error) {
	all, err := s.leads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if viewer.Role != models.RoleEngineer {
		return all, nil
	}
	out := []models.Lead{}
	for _, l := range all {
		if l.AssignedTo == viewer.ID {
			out = append(out, l)
		}
	}
	return out, nil
}

// All returns every lead regardless of viewer.
func (s *Service) All(ctx context.Context) ([]models.Lead, error) {
	return s.leads.List(ctx)
}

// Delete removes a lead. Proposals referencing it are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	s.log.InfoContext(ctx, "lead deleted", "lead_id", id)
	return nil
}
