// Package powerledger owns per-(organization, account) voting power records
// and delegation grants inside the governance context.
//
// It is the sole source of vote weight for the proposal lifecycle: effective
// power is computed at call time from own token power, own currency power,
// and received delegation snapshots, and is zero while the account has
// delegated away. Delegation amounts are frozen at grant time; expiry is
// enforced lazily by the callers that consume power.
package powerledger
