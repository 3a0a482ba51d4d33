package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

// service is an interface for the service layer.
type service interface {
	PlaceOrder(ctx context.Context, p principal.Principal) (order.Order, error)
	ListOrders(ctx context.Context, p principal.Principal, model order.ListOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, p principal.Principal, id int64) (order.Order, error)
	UpdateOrder(ctx context.Context, p principal.Principal, id int64, u order.Update) (order.Order, error)
}

// GRPCTransport serves littlelemon.v1.OrderService on server.grpc.port.
type GRPCTransport struct {
	server   *grpc.Server
	listener net.Listener
}

// NewGRPCTransport creates a new GRPCTransport with the order service registered.
func NewGRPCTransport(service service, auth authenticator, identity resolver) *GRPCTransport {
	listener, err := net.Listen("tcp", ":"+viper.GetString("server.grpc.port"))
	if err != nil {
		panic(err)
	}

	server := NewServer(auth, identity)
	server.RegisterService(&OrderServiceDesc, NewOrderServer(service))

	return &GRPCTransport{
		server:   server,
		listener: listener,
	}
}

// Run serves until Shutdown is called.
func (g *GRPCTransport) Run() error {
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown waits for in-flight calls. When ctx expires first the remaining
// connections are closed and ctx's error is returned.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	stop := context.AfterFunc(ctx, g.server.Stop)

	g.server.GracefulStop()
	if !stop() {
		return ctx.Err()
	}

	return nil
}

// NewServer creates a gRPC server with keepalive settings from config and
// the recovery, logging and authentication interceptors, outermost first.
func NewServer(auth authenticator, identity resolver) *grpc.Server {
	params, policy := keepaliveConfig()

	return grpc.NewServer(
		grpc.KeepaliveParams(params),
		grpc.KeepaliveEnforcementPolicy(policy),
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor,
			loggingInterceptor,
			authInterceptor(auth, identity),
		),
	)
}

func keepaliveConfig() (keepalive.ServerParameters, keepalive.EnforcementPolicy) {
	minutes := func(key string) time.Duration {
		return time.Duration(viper.GetInt("server.grpc.keepalive."+key)) * time.Minute
	}
	seconds := func(key string) time.Duration {
		return time.Duration(viper.GetInt("server.grpc.keepalive."+key)) * time.Second
	}

	params := keepalive.ServerParameters{
		MaxConnectionIdle:     minutes("max_connection_idle"),
		MaxConnectionAge:      minutes("max_connection_age"),
		MaxConnectionAgeGrace: seconds("max_connection_age_grace"),
		Time:                  seconds("time"),
		Timeout:               seconds("timeout"),
	}
	policy := keepalive.EnforcementPolicy{
		MinTime:             seconds("min_time"),
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	return params, policy
}
