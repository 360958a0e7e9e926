package errors

import "errors"

var (
	ErrInvalidFundingInput  = errors.New("invalid funding input")
	ErrFundingNotFound      = errors.New("funding record not found")
	ErrFundingExists        = errors.New("funding record already initialized")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrNotFundable          = errors.New("proposal is not fundable")
	ErrWindowClosed         = errors.New("funding window closed")
	ErrWindowOpen           = errors.New("funding window still open")
	ErrGoalReached          = errors.New("funding target already reached")
	ErrGoalNotReached       = errors.New("minimum funding goal not reached")
	ErrAssetMismatch        = errors.New("asset does not match the proposal's alternate asset")
	ErrUnauthorized         = errors.New("caller is not authorized")
	ErrInsufficientFunds    = errors.New("amount exceeds available escrow balance")
	ErrTransferFailed       = errors.New("asset transfer failed")
	ErrConflict             = errors.New("conflicting concurrent update")
)
