package models

import (
	"strings"
	"time"
)

// Lead is a prospective customer opportunity. Memos, follow-ups and
// attachments are owned by the lead; spare part and user ids are weak
// references.
type Lead struct {
	ID            string       `json:"id"`
	CompanyName   string       `json:"companyName"`
	ContactPerson string       `json:"contactPerson"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Application   string       `json:"application"`
	Source        LeadSource   `json:"source"`
	Status        LeadStatus   `json:"status"`
	AssignedTo    string       `json:"assignedTo,omitempty"`
	AssignedBy    string       `json:"assignedBy,omitempty"`
	Memos         []Memo       `json:"memos"`
	FollowUps     []FollowUp   `json:"followUps"`
	SpareParts    []string     `json:"spareParts"`
	Attachments   []Attachment `json:"attachments"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	CreatedBy     string       `json:"createdBy"`
}

func (l Lead) GetID() string { return l.ID }

// Normalize replaces absent lists with empty ones.
func (l *Lead) Normalize() {
	if l.Memos == nil {
		l.Memos = []Memo{}
	}
	if l.FollowUps == nil {
		l.FollowUps = []FollowUp{}
	}
	if l.SpareParts == nil {
		l.SpareParts = []string{}
	}
	if l.Attachments == nil {
		l.Attachments = []Attachment{}
	}
}

// Memo is a typed free-text note on a lead.
type Memo struct {
	ID        string    `json:"id"`
	Type      MemoType  `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// FollowUp records a dated contact with an optional next-contact date.
type FollowUp struct {
	ID           string     `json:"id"`
	Date         time.Time  `json:"date"`
	Notes        string     `json:"notes"`
	NextFollowUp *time.Time `json:"nextFollowUp,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    string     `json:"createdBy"`
}

// LeadInput carries the caller-editable lead fields.
type LeadInput struct {
	CompanyName   string     `json:"companyName"`
	ContactPerson string     `json:"contactPerson"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Application   string     `json:"application"`
	Source        LeadSource `json:"source"`
	SpareParts    []string   `json:"spareParts"`
}

// Validate checks the fields required to create or edit a lead.
func (in LeadInput) Validate() error {
	if err := Required(
		[2]string{"companyName", in.CompanyName},
		[2]string{"contactPerson", in.ContactPerson},
		[2]string{"email", in.Email},
		[2]string{"phone", in.Phone},
		[2]string{"application", in.Application},
		[2]string{"source", string(in.Source)},
	); err != nil {
		return err
	}
	if !in.Source.Valid() {
		return Invalid("source", "unknown source %q", in.Source)
	}
	return nil
}

// ApplicationOptions are the applications offered by the lead form.
var ApplicationOptions = []string{
	"Material & Warehouse Material Handling",
	"Fluid Dispensing System",
	"Foundry Automation System",
	"Vision System",
	"Robotic AGV / AMR",
	"Robotic 3D Manufacturing",
	"Robots In Assembly lines",
	"Welding Automation",
}

// DateLayout is the calendar date form sent by date pickers.
const DateLayout = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, which
// is read as midnight UTC. An empty string yields the zero time.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Invalid(field, "must be a date (YYYY-MM-DD) or RFC 3339 time")
	}
	return t, nil
}
