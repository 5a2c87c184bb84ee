package leads

import (
	"context"
	"slices"
	"time"

	"leaddesk/internal/models"
)

// Reminder is a scheduled follow-up together with the lead it belongs to.
type Reminder struct {
	LeadID        string    `json:"leadId"`
	CompanyName   string    `json:"companyName"`
	ContactPerson string    `json:"contactPerson"`
	FollowUpID    string    `json:"followUpId"`
	NextFollowUp  time.Time `json:"nextFollowUp"`
	Notes         string    `json:"notes"`
}

// Reminders returns the follow-ups of the leads visible to viewer that are
// due from the start of today on, soonest first. limit <= 0 means no limit.
func (s *Service) Reminders(ctx context.Context, viewer models.User, now time.Time, limit int) ([]Reminder, error) {
	visible, err := s.List(ctx, viewer)
	if err != nil {
		return nil, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := []Reminder{}
	for _, l := range visible {
		for _, f := range l.FollowUps {
			if f.NextFollowUp == nil || f.NextFollowUp.Before(today) {
				continue
			}
			out = append(out, Reminder{
				LeadID:        l.ID,
				CompanyName:   l.CompanyName,
				ContactPerson: l.ContactPerson,
				FollowUpID:    f.ID,
				NextFollowUp:  *f.NextFollowUp,
				Notes:         f.Notes,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b Reminder) int {
		return a.NextFollowUp.Compare(b.NextFollowUp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Recent returns up to n of the leads visible to viewer, newest first.
func (s *Service) Recent(ctx context.Context, viewer models.User, n int) ([]models.Lead, error) {
	visible, err := s.List(ctx, viewer)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(visible)
	slices.SortStableFunc(sorted, func(a, b models.Lead) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted, nil
}
