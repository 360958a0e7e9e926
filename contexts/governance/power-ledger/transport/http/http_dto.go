package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UpdateTokenPowerRequest struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type RefreshCurrencyPowerRequest struct {
	Account string `json:"account"`
}

type PowerResponse struct {
	OrgID             string `json:"org_id"`
	Account           string `json:"account"`
	TokenPower        uint64 `json:"token_power"`
	CurrencyPower     uint64 `json:"currency_power"`
	ReceivedDelegated uint64 `json:"received_delegated_power"`
	DelegateTarget    string `json:"delegate_target,omitempty"`
	EffectivePower    uint64 `json:"effective_power"`
	UpdatedAtEpoch    uint64 `json:"updated_at_epoch"`
}

type DelegateRequest struct {
	Delegate       string  `json:"delegate"`
	ExpiresAtEpoch *uint64 `json:"expires_at_epoch,omitempty"`
}

type DelegationResponse struct {
	OrgID          string  `json:"org_id"`
	Delegator      string  `json:"delegator"`
	Delegate       string  `json:"delegate"`
	Amount         uint64  `json:"amount"`
	ExpiresAtEpoch *uint64 `json:"expires_at_epoch,omitempty"`
	GrantedAtEpoch uint64  `json:"granted_at_epoch"`
}

type RevokeResponse struct {
	ReclaimedAmount uint64 `json:"reclaimed_amount"`
}

type DelegationListResponse struct {
	Items []DelegationResponse `json:"items"`
}
