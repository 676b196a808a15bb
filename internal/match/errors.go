package match

import "errors"

var (
	// ErrProfileIncomplete: the requester cannot browse until the profile is filled in.
	ErrProfileIncomplete = errors.New("profile incomplete")

	// ErrQuotaExhausted: no views left today.
	ErrQuotaExhausted = errors.New("daily quota exhausted")

	// ErrMatchLocked: the pair is already matched and cannot be changed.
	ErrMatchLocked = errors.New("cannot modify a completed match")

	ErrSelfAction   = errors.New("cannot act on yourself")
	ErrUserNotFound = errors.New("user not found")

	// ErrNotPartners: feedback can only be left for an accepted partner.
	ErrNotPartners = errors.New("users are not matched")

	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrContention: the relation log kept changing underneath us.
	ErrContention = errors.New("relation log contended, retry")
)
