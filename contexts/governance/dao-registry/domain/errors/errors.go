package errors

import "errors"

var (
	ErrInvalidOrgInput      = errors.New("invalid organization input")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationExists   = errors.New("organization already registered")
	ErrUnauthorized         = errors.New("caller is not the organization owner")
	ErrAlreadyDeactivated   = errors.New("organization already deactivated")
	ErrConflict             = errors.New("conflicting concurrent update")
)
