package entities

import "time"

// PowerRecord tracks the voting power of one account inside one organization.
// Token and currency components are own holdings; ReceivedDelegated is the sum
// of active delegation snapshots pointed at this account.
type PowerRecord struct {
	OrgID             string
	Account           string
	TokenPower        uint64
	CurrencyPower     uint64
	ReceivedDelegated uint64
	// DelegateTarget is set while the account has delegated its own power
	// away; a delegated account always spends 0.
	DelegateTarget string
	UpdatedAtEpoch uint64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p PowerRecord) OwnPower() uint64 {
	return p.TokenPower + p.CurrencyPower
}

// EffectivePower is the weight the account can actually spend on a vote.
func (p PowerRecord) EffectivePower() uint64 {
	if p.DelegateTarget != "" {
		return 0
	}
	return p.OwnPower() + p.ReceivedDelegated
}

// Delegation is the single active grant of a delegator inside an
// organization. Amount is a snapshot taken at grant time; later balance
// changes of the delegator never adjust it.
type Delegation struct {
	OrgID          string
	Delegator      string
	Delegate       string
	Amount         uint64
	ExpiresAtEpoch *uint64
	GrantedAtEpoch uint64
	CreatedAt      time.Time
}

func (d Delegation) Expired(epoch uint64) bool {
	return d.ExpiresAtEpoch != nil && epoch >= *d.ExpiresAtEpoch
}
