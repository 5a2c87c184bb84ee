package models

import (
	"time"
)

// Custom string types for the enumerated fields stored in the collections
type LeadSource string
type LeadStatus string
type MemoType string
type ProposalStatus string
type Role string

const (
	// Lead sources
	SourceWebsite     LeadSource = "website"
	SourceEmail       LeadSource = "email"
	SourcePhone       LeadSource = "phone"
	SourceReferral    LeadSource = "referral"
	SourceSocialMedia LeadSource = "social_media"
	SourceTradeShow   LeadSource = "trade_show"

	// Lead statuses
	LeadNew          LeadStatus = "new"
	LeadContacted    LeadStatus = "contacted"
	LeadProposalSent LeadStatus = "proposal_sent"
	LeadNegotiation  LeadStatus = "negotiation"
	LeadWon          LeadStatus = "won"
	LeadCancelled    LeadStatus = "cancelled"
	LeadHold         LeadStatus = "hold"

	// Memo types
	MemoSpare      MemoType = "spare"
	MemoProject    MemoType = "project"
	MemoService    MemoType = "service"
	MemoKeyAccount MemoType = "key_account"

	// Proposal statuses
	ProposalDraft    ProposalStatus = "draft"
	ProposalSent     ProposalStatus = "sent"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"

	// User roles
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEngineer Role = "engineer"
	RoleSales    Role = "sales"
)

var leadSources = map[LeadSource]bool{
	SourceWebsite: true, SourceEmail: true, SourcePhone: true,
	SourceReferral: true, SourceSocialMedia: true, SourceTradeShow: true,
}

var leadStatuses = map[LeadStatus]bool{
	LeadNew: true, LeadContacted: true, LeadProposalSent: true, LeadNegotiation: true,
	LeadWon: true, LeadCancelled: true, LeadHold: true,
}

var memoTypes = map[MemoType]bool{
	MemoSpare: true, MemoProject: true, MemoService: true, MemoKeyAccount: true,
}

var proposalStatuses = map[ProposalStatus]bool{
	ProposalDraft: true, ProposalSent: true, ProposalApproved: true, ProposalRejected: true,
}

var roles = map[Role]bool{
	RoleAdmin: true, RoleManager: true, RoleEngineer: true, RoleSales: true,
}

func (s LeadSource) Valid() bool     { return leadSources[s] }
func (s LeadStatus) Valid() bool     { return leadStatuses[s] }
func (t MemoType) Valid() bool       { return memoTypes[t] }
func (s ProposalStatus) Valid() bool { return proposalStatuses[s] }
func (r Role) Valid() bool           { return roles[r] }

// Entity is implemented by every record kept in a collection.
type Entity interface {
	GetID() string
}

// Now returns the current time truncated to milliseconds, which is the
// precision the persisted JSON round-trips with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
