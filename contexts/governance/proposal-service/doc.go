// Package proposalservice owns the proposal lifecycle inside the governance
// context: DRAFT -> ACTIVE -> PASSED or REJECTED -> EXECUTED, with CANCELED
// reachable only before finalization.
//
// Votes are immutable weighted records. A vote's weight is fetched from the
// power ledger at cast time and never revised afterwards, so the running
// tally is always the exact sum of stored vote records. Finalization reads
// the logical clock, compares the yes share of decisive (yes plus no) power
// against the proposal's approval threshold, and settles the outcome exactly
// once.
package proposalservice
