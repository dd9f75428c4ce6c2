// Package onboarding implements the multi-step supplier registration flow:
// a single form record shared by every section, a step state machine with
// per-step validation, a denormalized submission into the document store,
// and an approval wait that observes the profile document until an external
// reviewer approves it.
package onboarding
