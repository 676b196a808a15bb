package match

import (
	"context"
	"errors"

	"github.com/oggyb/mockmatch/internal/utils/pagination"
)

// Code classifies the outcome carried by a Result.
type Code string

const (
	CodeOK                Code = "ok"
	CodeInvalidArgument   Code = "invalid_argument"
	CodeNotFound          Code = "not_found"
	CodeProfileIncomplete Code = "profile_incomplete"
	CodeQuotaExhausted    Code = "quota_exhausted"
	CodeMatchLocked       Code = "match_locked"
	CodeUnavailable       Code = "unavailable"
)

// Result is the envelope every exposed operation returns instead of an error.
// Err keeps the underlying cause for logging and transport mapping.
type Result[T any] struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
	Err     error  `json:"-"`
}

func ok[T any](data T, msg string) Result[T] {
	return Result[T]{Success: true, Code: CodeOK, Message: msg, Data: data}
}

// fail turns an error from the core into an envelope. Quota exhaustion is
// not a failure of the call; callers that want an empty success build it
// themselves.
func fail[T any](err error) Result[T] {
	r := Result[T]{Success: false, Err: err}
	switch {
	case errors.Is(err, ErrSelfAction), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNotPartners),
		errors.Is(err, pagination.ErrInvalidToken):
		r.Code, r.Message = CodeInvalidArgument, err.Error()
	case errors.Is(err, ErrUserNotFound):
		r.Code, r.Message = CodeNotFound, err.Error()
	case errors.Is(err, ErrProfileIncomplete):
		r.Code, r.Message = CodeProfileIncomplete, "please complete your profile first"
	case errors.Is(err, ErrQuotaExhausted):
		r.Code, r.Message = CodeQuotaExhausted, "you have used all of today's views, come back tomorrow"
	case errors.Is(err, ErrMatchLocked):
		r.Code, r.Message = CodeMatchLocked, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.Code, r.Message = CodeUnavailable, "request interrupted, please retry"
	default:
		r.Code, r.Message = CodeUnavailable, "temporarily unavailable, please retry"
	}
	return r
}
