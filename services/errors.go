package services

import "errors"

// Expected failures surfaced by the service layer. Controllers map these onto
// HTTP responses; anything not in this list is treated as a storage failure.
var (
	// ErrHabitNotFound covers both a missing habit and an ownership mismatch,
	// so callers cannot probe for the existence of other users' habits.
	ErrHabitNotFound = errors.New("habit not found")
	ErrUserNotFound  = errors.New("user not found")

	// ErrAlreadyCompleted means a completion already exists for the habit in
	// the current period.
	ErrAlreadyCompleted = errors.New("habit already completed for this period")

	ErrSelfFollow      = errors.New("cannot follow yourself")
	ErrFollowExists    = errors.New("follow request already sent or accepted")
	ErrRequestNotFound = errors.New("follow request not found")
	ErrRequestResolved = errors.New("follow request already responded to")
	ErrInvalidAction   = errors.New("action must be ACCEPTED or REJECTED")
)
