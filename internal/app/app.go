package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/littlelemon/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/dal/memory"
	"github.com/corray333/littlelemon/internal/dal/postgres"
	"github.com/corray333/littlelemon/internal/dal/publisher"
	"github.com/corray333/littlelemon/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/littlelemon/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/littlelemon/internal/dal/uow"
	"github.com/corray333/littlelemon/internal/otel"
	"github.com/corray333/littlelemon/internal/service/models/orderevent"
	"github.com/corray333/littlelemon/internal/service/services/cartsvc"
	"github.com/corray333/littlelemon/internal/service/services/identitysvc"
	"github.com/corray333/littlelemon/internal/service/services/menusvc"
	"github.com/corray333/littlelemon/internal/service/services/ordersvc"
	"github.com/corray333/littlelemon/internal/service/services/staffsvc"
	grpctransport "github.com/corray333/littlelemon/internal/transport/grpc"
	httptransport "github.com/corray333/littlelemon/internal/transport/http"
	"github.com/corray333/littlelemon/internal/worker/outbox"
	"github.com/corray333/littlelemon/pkg/auth"
	"github.com/corray333/littlelemon/pkg/keymutex"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the application.
type App struct {
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outbox.Worker
	otelController *otel.OtelController
	// closers release storage and broker connections on shutdown, in order.
	closers []func()
}

// storage is the selected persistence driver.
type storage struct {
	factory iuow.Factory
	outbox  ioutboxrepo.IOutboxRepository
	close   func()
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel(viper.GetBool("otel.enabled"))

	store := mustNewStorage(viper.GetString("storage.driver"))
	closers := []func(){store.close}

	locks := keymutex.New[int64]()

	menuSvc := menusvc.MustNewMenuService(
		menusvc.WithUnitOfWork(store.factory),
	)
	cartSvc := cartsvc.MustNewCartService(
		cartsvc.WithUnitOfWork(store.factory),
		cartsvc.WithUserLocks(locks),
	)
	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithUnitOfWork(store.factory),
		ordersvc.WithUserLocks(locks),
		ordersvc.WithEventRouting(orderevent.Routing{
			Exchange:   viper.GetString("orders.events.exchange"),
			MaxRetries: viper.GetInt("orders.events.max_retries"),
		}),
	)
	staffSvc := staffsvc.MustNewStaffService(
		staffsvc.WithUnitOfWork(store.factory),
	)
	identitySvc := identitysvc.NewIdentityService(store.factory)

	authenticator := auth.NewAuthenticator(mustJWTSecret(), viper.GetString("auth.issuer"))

	httpTransport := httptransport.NewHTTPTransport(httptransport.Services{
		Menu:     menuSvc,
		Cart:     cartSvc,
		Orders:   orderSvc,
		Staff:    staffSvc,
		Auth:     authenticator,
		Identity: identitySvc,
	})
	httpTransport.RegisterRoutes()

	grpcTransport := grpctransport.NewGRPCTransport(orderSvc, authenticator, identitySvc)

	var eventPublisher outbox.Publisher
	if viper.GetBool("rabbitmq.enabled") {
		client := rabbitmq.MustNewClient()
		closers = append([]func(){func() {
			if err := client.Close(); err != nil {
				slog.Error("RabbitMQ connection close error", "error", err)
			}
		}}, closers...)

		eventPublisher = publisher.NewRabbitMQPublisher(
			client,
			viper.GetString("orders.events.exchange"),
			viper.GetString("orders.events.queue"),
			viper.GetString("orders.events.binding_key"),
		)
	} else {
		eventPublisher = publisher.NewLogPublisher(slog.Default())
	}

	return &App{
		httpTransport:  httpTransport,
		grpcTransport:  grpcTransport,
		outboxWorker:   outbox.NewWorker(store.outbox, eventPublisher),
		otelController: otelController,
		closers:        closers,
	}
}

func mustNewStorage(driver string) storage {
	switch driver {
	case "memory":
		store := memory.NewStore()

		var seed memory.Seed
		if err := viper.UnmarshalKey("storage.memory.seed", &seed); err != nil {
			panic(fmt.Sprintf("failed to read memory seed: %v", err))
		}
		if err := store.Load(seed); err != nil {
			panic(fmt.Sprintf("failed to load memory seed: %v", err))
		}

		slog.Info("Using in-memory storage",
			"categories", len(seed.Categories),
			"menu_items", len(seed.MenuItems),
			"users", len(seed.Users))

		return storage{
			factory: store.Factory(),
			outbox:  store.OutboxRepository(),
			close:   func() {},
		}
	case "postgres":
		client := postgres.MustNewClient()

		return storage{
			factory: uow.Factory(client),
			outbox:  outboxrepo.NewOutboxRepository(client.Pool()),
			close: func() {
				client.Close()
				slog.Info("Database connection closed gracefully")
			},
		}
	default:
		panic(fmt.Sprintf("unknown storage driver %q", driver))
	}
}

func mustJWTSecret() string {
	secret := os.Getenv("LITTLELEMON_JWT_SECRET")
	if secret == "" {
		panic("LITTLELEMON_JWT_SECRET is not set")
	}

	return secret
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server")
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := a.grpcTransport.Run(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.outboxWorker.Start(gctx)

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")

		a.shutdown()

		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Application stopped with error", "error", err)
	}

	for _, closeFn := range a.closers {
		closeFn()
	}

	slog.Info("Application shutdown complete")
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}
}
