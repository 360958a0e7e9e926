// Package daoregistry is the organization directory for the governance
// context: registration, metadata, activation state. It carries no
// invariant-bearing governance logic; the proposal module consults it through
// a narrow projection for ownership and liveness checks.
package daoregistry
