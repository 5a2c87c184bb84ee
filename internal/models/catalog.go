package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProposalTemplate is a reusable preset of proposal fields plus the
// boilerplate used when a proposal document is produced.
type ProposalTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SpecFields
	HeaderContent string    `json:"headerContent"`
	FooterContent string    `json:"footerContent"`
	Image         string    `json:"image,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

func (t ProposalTemplate) GetID() string { return t.ID }

// SparePart is a catalog item referenced by leads and proposals.
type SparePart struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PartNumber    string    `json:"partNumber"`
	Description   string    `json:"description"`
	Cost          float64   `json:"cost"`
	Compatibility []string  `json:"compatibility"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p SparePart) GetID() string { return p.ID }

// Normalize replaces an absent compatibility list with an empty one.
func (p *SparePart) Normalize() {
	if p.Compatibility == nil {
		p.Compatibility = []string{}
	}
}

// ParseCompatibility splits a comma separated model list, trimming blanks.
func ParseCompatibility(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// TemplateInput carries the caller-editable template fields.
type TemplateInput struct {
	Name string `json:"name"`
	SpecFields
	HeaderContent string `json:"headerContent"`
	FooterContent string `json:"footerContent"`
	Image         string `json:"image"`
	IsActive      *bool  `json:"isActive"`
}

// Validate requires a name and the equipment fields.
func (in TemplateInput) Validate() error {
	if err := Required([2]string{"name", in.Name}); err != nil {
		return err
	}
	return in.SpecFields.Validate()
}

// CompatibilityList decodes either a JSON list or a comma separated string.
type CompatibilityList []string

func (c *CompatibilityList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ParseCompatibility(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("compatibility: %w", err)
	}
	out := CompatibilityList{}
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*c = out
	return nil
}

// SparePartInput carries the caller-editable spare part fields.
type SparePartInput struct {
	Name          string            `json:"name"`
	PartNumber    string            `json:"partNumber"`
	Description   string            `json:"description"`
	Cost          float64           `json:"cost"`
	Compatibility CompatibilityList `json:"compatibility"`
	Image         string            `json:"image"`
}

// Validate requires a name and part number and a non-negative cost.
func (in SparePartInput) Validate() error {
	if err := Required(
		[2]string{"name", in.Name},
		[2]string{"partNumber", in.PartNumber},
	); err != nil {
		return err
	}
	if in.Cost < 0 {
		return Invalid("cost", "must not be negative")
	}
	return nil
}
