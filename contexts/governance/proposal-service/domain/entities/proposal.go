package entities

import "time"

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusPassed   Status = "passed"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
	StatusCanceled Status = "canceled"
)

type VoteKind string

const (
	VoteKindYes     VoteKind = "yes"
	VoteKindNo      VoteKind = "no"
	VoteKindAbstain VoteKind = "abstain"
)

// Proposal is a governance item owned by an organization. The id is an opaque
// account-like handle unique across organizations.
type Proposal struct {
	ProposalID       string
	Title            string
	Description      string
	OrgID            string
	Proposer         string
	Status           Status
	ExecutionPayload string
	FundingGoal      uint64
	// MinApprovalPercent gates finalization: yes/(yes+no) in whole percent.
	MinApprovalPercent uint64
	VoteStartEpoch     uint64
	VoteEndEpoch       uint64
	CreatedAtEpoch     uint64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Terminal reports whether the governance outcome is immutable.
func (p Proposal) Terminal() bool {
	switch p.Status {
	case StatusPassed, StatusRejected, StatusExecuted, StatusCanceled:
		return true
	default:
		return false
	}
}

// VoteRecord is immutable once cast: one record per (proposal, voter), no
// revote and no override.
type VoteRecord struct {
	ProposalID  string
	Voter       string
	Kind        VoteKind
	Power       uint64
	CastAtEpoch uint64
	CreatedAt   time.Time
}

// VoteTally accumulates committed power per bucket. TotalVoted always equals
// yes+no+abstain and the sum of power over the proposal's vote records.
type VoteTally struct {
	ProposalID string
	Yes        uint64
	No         uint64
	Abstain    uint64
	TotalVoted uint64
	UpdatedAt  time.Time
}

// ApprovalPercent is floor(yes*100/(yes+no)); abstains never enter the
// denominator, and no yes/no votes at all means 0.
func (t VoteTally) ApprovalPercent() uint64 {
	denominator := t.Yes + t.No
	if denominator == 0 {
		return 0
	}
	return t.Yes * 100 / denominator
}
