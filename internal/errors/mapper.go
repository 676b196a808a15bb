// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/mockmatch/internal/match"
	"github.com/oggyb/mockmatch/internal/utils/pagination"
)

// Map converts engine/repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, match.ErrUserNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, pagination.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, match.ErrContention):
		return status.Error(codes.Aborted, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// CodeOf returns the gRPC code a failed engine outcome maps to. Expected
// outcomes (profile incomplete, quota exhausted, locked match) are answered
// in the envelope rather than as transport errors, so they map to OK.
func CodeOf(c match.Code) codes.Code {
	switch c {
	case match.CodeInvalidArgument:
		return codes.InvalidArgument
	case match.CodeNotFound:
		return codes.NotFound
	case match.CodeUnavailable:
		return codes.Unavailable
	default:
		return codes.OK
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// Internal creates a gRPC Internal error.
func Internal(msg string) error {
	return status.Error(codes.Internal, msg)
}
