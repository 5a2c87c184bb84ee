package models

import (
	"time"
)

// SpecFields are the equipment fields shared by proposals and templates.
type SpecFields struct {
	Robot       string  `json:"robot"`
	Controller  string  `json:"controller"`
	Reach       string  `json:"reach"`
	Payload     string  `json:"payload"`
	Brand       string  `json:"brand"`
	Cost        float64 `json:"cost"`
	Description string  `json:"description"`
}

// Validate requires the five equipment fields and a non-negative cost.
func (f SpecFields) Validate() error {
	if err := Required(
		[2]string{"robot", f.Robot},
		[2]string{"controller", f.Controller},
		[2]string{"reach", f.Reach},
		[2]string{"payload", f.Payload},
		[2]string{"brand", f.Brand},
	); err != nil {
		return err
	}
	if f.Cost < 0 {
		return Invalid("cost", "must not be negative")
	}
	return nil
}

// Proposal is a priced equipment offer tied to a lead.
//
// Version always equals len(History)+1. Every edit of the spec fields after
// creation appends exactly one history entry carrying the new version.
type Proposal struct {
	ID         string `json:"id"`
	LeadID     string `json:"leadId"`
	TemplateID string `json:"templateId,omitempty"`
	SpecFields
	SpareParts  []string          `json:"spareParts"`
	Attachments []Attachment      `json:"attachments"`
	Status      ProposalStatus    `json:"status"`
	Version     int               `json:"version"`
	History     []ProposalHistory `json:"history"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	CreatedBy   string            `json:"createdBy"`
}

func (p Proposal) GetID() string { return p.ID }

// Normalize replaces absent lists with empty ones.
func (p *Proposal) Normalize() {
	if p.SpareParts == nil {
		p.SpareParts = []string{}
	}
	if p.Attachments == nil {
		p.Attachments = []Attachment{}
	}
	if p.History == nil {
		p.History = []ProposalHistory{}
	}
}

// ProposalHistory is one immutable audit entry of a proposal edit.
type ProposalHistory struct {
	ID         string    `json:"id"`
	Version    int       `json:"version"`
	Changes    string    `json:"changes"`
	ModifiedBy string    `json:"modifiedBy"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// ProposalInput carries the caller-editable proposal fields.
type ProposalInput struct {
	LeadID     string `json:"leadId"`
	TemplateID string `json:"templateId"`
	SpecFields
	SpareParts []string `json:"spareParts"`
}
