package grpctransport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corray333/littlelemon/internal/service/svcerr"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code maps a service error kind to a gRPC code.
func Code(kind svcerr.Kind) codes.Code {
	switch kind {
	case svcerr.KindValidation:
		return codes.InvalidArgument
	case svcerr.KindUnauthenticated:
		return codes.Unauthenticated
	case svcerr.KindForbidden:
		return codes.PermissionDenied
	case svcerr.KindNotFound:
		return codes.NotFound
	case svcerr.KindConflict:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a gRPC status error. Field reasons
// travel as a BadRequest detail.
func toStatus(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	e, ok := svcerr.As(err)
	if !ok {
		slog.ErrorContext(ctx, "Error handling gRPC request", "method", method, "error", err)

		return status.Error(codes.Internal, "internal error")
	}

	st := status.New(Code(e.Kind), e.Message)
	if len(e.Fields) == 0 {
		return st.Err()
	}

	details := &errdetails.BadRequest{}
	for field, reason := range e.Fields {
		details.FieldViolations = append(details.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       field,
			Description: reason,
		})
	}

	withDetails, detailErr := st.WithDetails(details)
	if detailErr != nil {
		return st.Err()
	}

	return withDetails.Err()
}
