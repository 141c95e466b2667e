package model

import "errors"

// Sentinel errors for the model package. Callers should branch on these
// with errors.Is rather than string comparison, the same contract lvlath's
// core and builder packages document.
var (
	// ErrNilChild indicates AddChild was called with a nil Node.
	ErrNilChild = errors.New("model: nil child")

	// ErrChildAlreadyPresent indicates AddChild was called with a Node that
	// already belongs to this (or another) Coupled model.
	ErrChildAlreadyPresent = errors.New("model: child already has a parent")

	// ErrNotAChild indicates RemoveChild, or a Connect endpoint, named a
	// Node that is not a direct child of this Coupled model.
	ErrNotAChild = errors.New("model: not a child of this coupled model")

	// ErrUnknownPin indicates a Connect endpoint named a Pin that was never
	// minted by AddInputPin/AddOutputPin on the relevant model.
	ErrUnknownPin = errors.New("model: pin does not belong to the named model's surface")

	// ErrInvalidCoupling wraps any failure to resolve a connect() endpoint:
	// the spec.md §7 "Invalid coupling" error kind.
	ErrInvalidCoupling = errors.New("model: invalid coupling")

	// ErrStructureViolation indicates a structure change left the model
	// graph inconsistent, e.g. an orphaned descendant that was not
	// transitively removed. The spec.md §7 "Structure-change violation"
	// error kind.
	ErrStructureViolation = errors.New("model: structure-change violation")
)
