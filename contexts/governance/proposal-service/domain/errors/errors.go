package errors

import "errors"

var (
	ErrInvalidProposalInput = errors.New("invalid proposal input")
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrProposalExists       = errors.New("proposal already exists")
	ErrInvalidStatus        = errors.New("operation not allowed in current proposal status")
	ErrVotingClosed         = errors.New("voting window is closed")
	ErrVotingOpen           = errors.New("voting window is still open")
	ErrUnauthorized         = errors.New("caller is not the proposer or organization owner")
	ErrVoteExists           = errors.New("account has already voted on this proposal")
	ErrZeroVotePower        = errors.New("account has no spendable vote power")
	ErrInvalidVoteKind      = errors.New("invalid vote kind")
	ErrTallyNotFound        = errors.New("vote tally not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationInactive = errors.New("organization is not active")
	ErrConflict             = errors.New("proposal conflict")
)
