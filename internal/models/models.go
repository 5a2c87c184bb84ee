// Package models defines the records kept in the leaddesk collections: leads
// with their memos and follow-ups, versioned proposals, proposal templates,
// spare parts and users, plus the enumerations and errors shared by the
// services that manage them.
package models

import (
	"time"
)

// Attachment references a file stored in the blob store. Key and SHA256
// identify the stored content; URL is where the API serves it.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Key        string    `json:"key,omitempty"`
	SHA256     string    `json:"sha256,omitempty"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
}

// Collection keys used in the store.
const (
	KeyLeads             = "leads"
	KeyProposals         = "proposals"
	KeyProposalTemplates = "proposalTemplates"
	KeySpareParts        = "spareParts"
	KeyUsers             = "users"
)

// CollectionKeys lists every persisted collection.
var CollectionKeys = []string{KeyLeads, KeyProposals, KeyProposalTemplates, KeySpareParts, KeyUsers}
