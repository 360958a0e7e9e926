package entities

import "time"

// FundingRecord is the escrow ledger for one proposal. The proposal id doubles
// as the escrow holding account on the asset service. Native currency and at
// most one alternate asset are tracked separately; the alternate asset's
// identity is fixed by whichever token contribution arrives first.
type FundingRecord struct {
	ProposalID       string
	OrgID            string
	Beneficiary      string
	Fundable         bool
	WindowStartEpoch uint64
	WindowEndEpoch   uint64
	MinGoal          uint64
	TargetGoal       uint64
	TotalRaised      uint64
	NativeRaised     uint64
	TokenAsset       string
	TokenRaised      uint64
	FunderCount      uint64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WindowOpen reports whether contributions are admissible at the given epoch.
// The funding window is inclusive on both ends.
func (r FundingRecord) WindowOpen(epoch uint64) bool {
	return epoch >= r.WindowStartEpoch && epoch <= r.WindowEndEpoch
}

// WindowClosed reports whether the funding window has ended.
func (r FundingRecord) WindowClosed(epoch uint64) bool {
	return epoch > r.WindowEndEpoch
}

func (r FundingRecord) TargetReached() bool {
	return r.TotalRaised >= r.TargetGoal
}

func (r FundingRecord) MinGoalReached() bool {
	return r.TotalRaised >= r.MinGoal
}

// Contribution is one funder's cumulative stake in a proposal's escrow. It is
// mutated only by the funder's own contributions and deleted by refund.
type Contribution struct {
	ProposalID   string
	Funder       string
	NativeAmount uint64
	TokenAmount  uint64
	FirstEpoch   uint64
	LastEpoch    uint64
	Count        uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WithdrawalRecord tracks cumulative beneficiary withdrawals per asset, never
// exceeding the raised amount for that asset.
type WithdrawalRecord struct {
	ProposalID      string
	WithdrawnNative uint64
	WithdrawnToken  uint64
	LastEpoch       uint64
	Count           uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
