package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateProposalRequest struct {
	ProposalID         string `json:"proposal_id,omitempty"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	OrgID              string `json:"org_id"`
	ExecutionPayload   string `json:"execution_payload,omitempty"`
	FundingGoal        uint64 `json:"funding_goal,omitempty"`
	MinApprovalPercent uint64 `json:"min_approval_percent"`
	VoteStartEpoch     uint64 `json:"vote_start_epoch"`
	VoteEndEpoch       uint64 `json:"vote_end_epoch"`
}

type ProposalResponse struct {
	ProposalID         string `json:"proposal_id"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	OrgID              string `json:"org_id"`
	Proposer           string `json:"proposer"`
	Status             string `json:"status"`
	ExecutionPayload   string `json:"execution_payload,omitempty"`
	FundingGoal        uint64 `json:"funding_goal,omitempty"`
	MinApprovalPercent uint64 `json:"min_approval_percent"`
	VoteStartEpoch     uint64 `json:"vote_start_epoch"`
	VoteEndEpoch       uint64 `json:"vote_end_epoch"`
	CreatedAtEpoch     uint64 `json:"created_at_epoch"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type CastVoteRequest struct {
	Kind string `json:"kind"`
}

type VoteResponse struct {
	ProposalID  string `json:"proposal_id"`
	Voter       string `json:"voter"`
	Kind        string `json:"kind"`
	Power       uint64 `json:"power"`
	CastAtEpoch uint64 `json:"cast_at_epoch"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
}

type TallyResponse struct {
	ProposalID      string `json:"proposal_id"`
	Yes             uint64 `json:"yes"`
	No              uint64 `json:"no"`
	Abstain         uint64 `json:"abstain"`
	TotalVoted      uint64 `json:"total_voted"`
	ApprovalPercent uint64 `json:"approval_percent"`
}

type FinalizeResponse struct {
	Proposal        ProposalResponse `json:"proposal"`
	Tally           TallyResponse    `json:"tally"`
	ApprovalPercent uint64           `json:"approval_percent"`
}
