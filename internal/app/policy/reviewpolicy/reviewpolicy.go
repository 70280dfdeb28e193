// Package reviewpolicy decides who may review whom. Decisions are pure
// functions of an explicit actor snapshot and the target profile, so a
// role or cohort change only takes effect through a fresh lookup.
package reviewpolicy

import (
	"errors"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrForbidden means the actor may not review or manage the target.
	ErrForbidden = errors.New("you do not have permission to review this member")

	// ErrLocked means the profile is locked by an approval and the
	// member cannot change it until a reviewer unlocks it.
	ErrLocked = errors.New("profile is locked and cannot be edited")
)

// Actor is the reviewer's identity and cohort at decision time.
type Actor struct {
	ID        primitive.ObjectID
	Role      string
	Program   string
	YearLevel string
	Section   string
	Major     *string
}

// ActorFromProfile snapshots a profile into an Actor.
func ActorFromProfile(p models.Profile) Actor {
	return Actor{
		ID:        p.ID,
		Role:      p.Role,
		Program:   p.Program,
		YearLevel: p.YearLevel,
		Section:   p.Section,
		Major:     p.Major,
	}
}

// CanReview reports whether the actor may review the target's
// artifacts. Self-review is never allowed, for any role. Admins review
// everyone else; presidents review students in their exact cohort;
// students review nobody.
func CanReview(actor Actor, target models.Profile) error {
	if actor.ID == target.ID {
		return ErrForbidden
	}

	switch actor.Role {
	case models.RoleAdmin:
		return nil

	case models.RolePresident:
		if target.Role != models.RoleStudent {
			return ErrForbidden
		}
		if actor.Program != target.Program ||
			actor.YearLevel != target.YearLevel ||
			actor.Section != target.Section {
			return ErrForbidden
		}
		if !majorsEqual(actor.Major, target.Major) {
			return ErrForbidden
		}
		return nil

	default:
		return ErrForbidden
	}
}

// ListScope describes which profiles an actor may list for review.
type ListScope struct {
	// All is true for admins: every profile is visible.
	All bool

	// Cohort restricts presidents to their own program/year/section/
	// major, excluding themselves. Nil when All is true or the actor
	// has no review surface at all.
	Cohort *CohortFilter
}

// CohortFilter is the exact-match cohort a president may see.
type CohortFilter struct {
	Program   string
	YearLevel string
	Section   string
	Major     *string
	ExcludeID primitive.ObjectID
}

// ScopeForList returns the listing scope for an actor, or ErrForbidden
// for roles with no review surface.
func ScopeForList(actor Actor) (ListScope, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return ListScope{All: true}, nil
	case models.RolePresident:
		return ListScope{Cohort: &CohortFilter{
			Program:   actor.Program,
			YearLevel: actor.YearLevel,
			Section:   actor.Section,
			Major:     actor.Major,
			ExcludeID: actor.ID,
		}}, nil
	default:
		return ListScope{}, ErrForbidden
	}
}

// CanSelfEdit reports whether the member may edit their own profile or
// replace artifacts. A locked profile must first be unlocked by a
// reviewer's disapproval.
func CanSelfEdit(p models.Profile) error {
	if p.IsLocked {
		return ErrLocked
	}
	return nil
}

// majorsEqual compares majors with nil treated as its own value:
// two absent majors match, an absent major never matches a present
// one, and an empty string is a present (distinct) value.
func majorsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
