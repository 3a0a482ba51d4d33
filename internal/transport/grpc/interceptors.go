package grpctransport

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/corray333/littlelemon/internal/service/models/principal"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authenticator verifies an authorization value and yields the user id.
type authenticator interface {
	Authenticate(header string) (int64, error)
}

// resolver loads the principal of an authenticated user.
type resolver interface {
	Resolve(ctx context.Context, userID int64) (principal.Principal, error)
}

// metadataCarrier adapts incoming metadata for trace context extraction.
type metadataCarrier metadata.MD

var _ propagation.TextMapCarrier = metadataCarrier{}

func (c metadataCarrier) Get(key string) string {
	values := metadata.MD(c).Get(key)
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

func (c metadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}

	return keys
}

// authInterceptor resolves the caller from the "authorization" metadata.
// Every method of the order service requires an authenticated caller.
func authInterceptor(auth authenticator, identity resolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}

		userID, err := auth.Authenticate(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "authentication credentials were not provided or are invalid")
		}

		p, err := identity.Resolve(ctx, userID)
		if err != nil {
			return nil, toStatus(ctx, info.FullMethod, err)
		}

		return handler(principal.WithContext(ctx, p), req)
	}
}

// loggingInterceptor traces each call and logs its outcome.
func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))
	}

	ctx, span := otel.Tracer("littlelemon").Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	if code != codes.OK {
		span.SetStatus(otelcodes.Error, code.String())
	}

	slog.InfoContext(ctx, "gRPC request handled",
		"method", info.FullMethod,
		"code", code.String(),
		"duration", time.Since(start),
	)

	return resp, err
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func recoveryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Panic in gRPC handler",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			resp = nil
			err = status.Error(codes.Internal, "internal error")
		}
	}()

	return handler(ctx, req)
}
