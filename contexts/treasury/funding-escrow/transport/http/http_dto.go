package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitializeFundingRequest struct {
	OrgID            string `json:"org_id,omitempty"`
	Beneficiary      string `json:"beneficiary"`
	Fundable         bool   `json:"fundable"`
	WindowStartEpoch uint64 `json:"window_start_epoch"`
	WindowEndEpoch   uint64 `json:"window_end_epoch"`
	MinGoal          uint64 `json:"min_goal"`
	TargetGoal       uint64 `json:"target_goal"`
}

type FundingResponse struct {
	ProposalID       string `json:"proposal_id"`
	OrgID            string `json:"org_id,omitempty"`
	Beneficiary      string `json:"beneficiary"`
	Fundable         bool   `json:"fundable"`
	WindowStartEpoch uint64 `json:"window_start_epoch"`
	WindowEndEpoch   uint64 `json:"window_end_epoch"`
	MinGoal          uint64 `json:"min_goal"`
	TargetGoal       uint64 `json:"target_goal"`
	TotalRaised      uint64 `json:"total_raised"`
	NativeRaised     uint64 `json:"native_raised"`
	TokenAsset       string `json:"token_asset,omitempty"`
	TokenRaised      uint64 `json:"token_raised"`
	FunderCount      uint64 `json:"funder_count"`
	AvailableNative  uint64 `json:"available_native"`
	AvailableToken   uint64 `json:"available_token"`
}

type ContributeRequest struct {
	Amount uint64 `json:"amount"`
	Asset  string `json:"asset,omitempty"`
}

type ContributionResponse struct {
	ProposalID   string `json:"proposal_id"`
	Funder       string `json:"funder"`
	NativeAmount uint64 `json:"native_amount"`
	TokenAmount  uint64 `json:"token_amount"`
	FirstEpoch   uint64 `json:"first_epoch"`
	LastEpoch    uint64 `json:"last_epoch"`
	Count        uint64 `json:"count"`
}

type ContributionListResponse struct {
	Items []ContributionResponse `json:"items"`
}

type WithdrawRequest struct {
	Amount uint64 `json:"amount"`
}

type WithdrawalResponse struct {
	ProposalID      string `json:"proposal_id"`
	WithdrawnNative uint64 `json:"withdrawn_native"`
	WithdrawnToken  uint64 `json:"withdrawn_token"`
	LastEpoch       uint64 `json:"last_epoch"`
	Count           uint64 `json:"count"`
}

type RefundResponse struct {
	ProposalID     string `json:"proposal_id"`
	Funder         string `json:"funder"`
	NativeRefunded uint64 `json:"native_refunded"`
	TokenAsset     string `json:"token_asset,omitempty"`
	TokenRefunded  uint64 `json:"token_refunded"`
}
