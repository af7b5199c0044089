package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors for every failure the API reports to callers. Services
// return these (optionally wrapped with %w) and handlers map them to HTTP
// status codes via Status.
var (
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("invalid input")
	ErrAlreadyMember           = errors.New("user already belongs to an apartment")
	ErrCapacityExceeded        = errors.New("apartment is full")
	ErrNotAMember              = errors.New("user is not a member of this apartment")
	ErrSlotTaken               = errors.New("day already taken by another resident")
	ErrNotClaimant             = errors.New("day is not claimed by this user")
	ErrAlreadyClaimedElsewhere = errors.New("user already claims another day this week")
	ErrModeConflict            = errors.New("templates are inert while default tasks are active")
)

// Status maps a service error to the HTTP status a handler should return.
// Unknown errors map to 500; handlers log those and never leak the cause.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrNotAMember),
		errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrNotClaimant),
		errors.Is(err, ErrAlreadyClaimedElsewhere),
		errors.Is(err, ErrModeConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
