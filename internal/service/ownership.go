package service

import (
	"errors"
	"fmt"
)

// ErrForbidden is matched by every ownership failure.
var ErrForbidden = errors.New("forbidden")

// ResourceKind names the type of resource an ownership check guards.
type ResourceKind string

// Resource kinds guarded by ownership checks.
const (
	ResourceExam       ResourceKind = "exam"
	ResourceSubmission ResourceKind = "submission"
)

// Actor is the authenticated teacher performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// Owned is implemented by models that belong to a teacher.
type Owned interface {
	OwnerID() uint
}

// AccessError describes a rejected ownership check.
type AccessError struct {
	Kind       ResourceKind
	ResourceID uint
	ActorID    uint
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %d is not owned by user %d", e.Kind, e.ResourceID, e.ActorID)
}

// Is lets errors.Is(err, ErrForbidden) match any AccessError.
func (e *AccessError) Is(target error) bool {
	return target == ErrForbidden
}

// authorizeOwner is the single ownership check used by every exam, submission
// and grading operation.
func authorizeOwner(kind ResourceKind, resourceID uint, resource Owned, actor Actor) error {
	if actor.ID == 0 || resource.OwnerID() != actor.ID {
		return &AccessError{Kind: kind, ResourceID: resourceID, ActorID: actor.ID}
	}
	return nil
}
