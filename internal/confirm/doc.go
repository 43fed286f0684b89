// Package confirm implements the confirmation loop shown before committing.
//
// The loop is a three-state machine:
//
//	PRESENT --y/yes/empty--> DONE(committed)
//	PRESENT --n/no---------> DONE(cancelled)
//	PRESENT --e/edit-------> EDIT --empty line--> PRESENT
//	any state --EOF/cancel-> DONE(cancelled)
//
// Any other answer re-prompts. Edited text replaces the message as typed; it
// is not checked against Conventional Commits again.
//
// Input is read through a LineReader whose single background goroutine lets
// a read blocked on the terminal be abandoned when the signal context is
// cancelled. AutoConfirmer is the non-interactive Confirmer behind --yes.
package confirm
