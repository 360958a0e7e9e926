// Package fundingescrow holds contributed assets against per-proposal funding
// goals inside the treasury context.
//
// The escrow account on the asset service is the proposal's own handle.
// External transfers always run before the matching record write, so a
// rejected transfer leaves escrow state untouched. Reaching the minimum goal
// after the window closes unlocks beneficiary withdrawals; missing it unlocks
// per-funder refunds of both tracked assets, exactly once each.
package fundingescrow
