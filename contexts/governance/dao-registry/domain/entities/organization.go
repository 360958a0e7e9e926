package entities

import "time"

// Organization is a registered DAO, identified by an opaque account-like
// handle. The registry carries no governance logic of its own; it is the
// ownership and liveness boundary other modules consult.
type Organization struct {
	OrgID             string
	Name              string
	Description       string
	URL               string
	Owner             string
	Active            bool
	RegisteredAtEpoch uint64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
