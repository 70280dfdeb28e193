// Package approval holds the pure review-state transitions for member
// artifacts. Handlers decide who may act (policy) and stores decide how
// the result is persisted; this package only decides what changes.
package approval

import (
	"errors"
	"strings"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
)

// Kind identifies which artifact a transition applies to.
type Kind string

const (
	KindPicture   Kind = "picture"
	KindSignature Kind = "signature"
)

var (
	// ErrReasonRequired is returned when a disapproval carries a blank
	// reason. No state change happens in that case.
	ErrReasonRequired = errors.New("a reason is required to disapprove")

	// ErrUnknownKind is returned for a Kind other than picture/signature.
	ErrUnknownKind = errors.New(`artifact kind must be "picture" or "signature"`)
)

// Change is the field delta produced by one transition. SetLock is
// false for re-uploads, which never touch the shared lock.
type Change struct {
	Kind    Kind
	Status  string
	Reason  *string // nil clears the stored reason
	SetLock bool
	Locked  bool
}

// Approve builds the delta for approving one artifact: status becomes
// approved, any disapproval reason is cleared, and the profile locks.
func Approve(kind Kind) (Change, error) {
	if err := checkKind(kind); err != nil {
		return Change{}, err
	}
	return Change{
		Kind:    kind,
		Status:  models.StatusApproved,
		SetLock: true,
		Locked:  true,
	}, nil
}

// Disapprove builds the delta for disapproving one artifact. The reason
// is mandatory; it replaces any previous reason outright. Disapproval
// unlocks the profile so the member can fix and re-upload.
func Disapprove(kind Kind, reason string) (Change, error) {
	if err := checkKind(kind); err != nil {
		return Change{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Change{}, ErrReasonRequired
	}
	return Change{
		Kind:    kind,
		Status:  models.StatusDisapproved,
		Reason:  &reason,
		SetLock: true,
		Locked:  false,
	}, nil
}

// Reupload builds the delta applied when the member replaces an
// artifact: back to pending, reason cleared, lock untouched.
func Reupload(kind Kind) (Change, error) {
	if err := checkKind(kind); err != nil {
		return Change{}, err
	}
	return Change{
		Kind:   kind,
		Status: models.StatusPending,
	}, nil
}

// Apply writes the delta onto an in-memory profile. Stores mirror this
// logic when building their update documents; tests use it directly.
func (c Change) Apply(p *models.Profile) {
	switch c.Kind {
	case KindPicture:
		p.PictureStatus = c.Status
		p.PictureDisapprovalReason = c.Reason
	case KindSignature:
		p.SignatureStatus = c.Status
		p.SignatureDisapprovalReason = c.Reason
	}
	if c.SetLock {
		p.IsLocked = c.Locked
	}
}

func checkKind(kind Kind) error {
	if kind != KindPicture && kind != KindSignature {
		return ErrUnknownKind
	}
	return nil
}
