// Package buddy orchestrates one commitbuddy run.
//
// A run reads the staged changes from a DiffSource, optionally asks a
// MessageSource for a candidate, normalizes it with package commitmsg,
// hands the result to a confirm.Confirmer and finally commits:
//
//	Diff Source -> (Message Source -> Normalizer) -> Confirmation -> commit
//
// The Message Source is best effort. A missing credential, a rejected
// credential, throttling, an outage or a nonsense answer all end in the same
// place: a valid Conventional Commits summary built from the staged paths.
// Only repository problems and a refused commit are returned as errors.
package buddy
