package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/service/models/category"
	"github.com/corray333/littlelemon/internal/service/models/menuitem"
	"github.com/corray333/littlelemon/internal/service/models/order"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/services/menusvc"
	"github.com/corray333/littlelemon/internal/transport/http/authn"
	"github.com/corray333/littlelemon/internal/transport/http/cart"
	"github.com/corray333/littlelemon/internal/transport/http/docs"
	"github.com/corray333/littlelemon/internal/transport/http/groups"
	"github.com/corray333/littlelemon/internal/transport/http/menu"
	"github.com/corray333/littlelemon/internal/transport/http/orders"
	"github.com/corray333/littlelemon/pkg/http/middleware/trace"
	"github.com/corray333/littlelemon/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type menuService interface {
	ListMenuItems(ctx context.Context, model menusvc.ListMenuItemsModel) ([]menuitem.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error)
	ListCategories(ctx context.Context) ([]category.Category, error)
}

type cartService interface {
	Upsert(ctx context.Context, userID, menuItemID int64, quantity int) (cartline.UpsertResult, error)
	List(ctx context.Context, userID int64) ([]cartline.CartLine, error)
	Clear(ctx context.Context, userID int64) error
}

type orderService interface {
	PlaceOrder(ctx context.Context, p principal.Principal) (order.Order, error)
	ListOrders(ctx context.Context, p principal.Principal, model order.ListOrdersModel) ([]order.Order, error)
	GetOrder(ctx context.Context, p principal.Principal, id int64) (order.Order, error)
	UpdateOrder(ctx context.Context, p principal.Principal, id int64, u order.Update) (order.Order, error)
	ReplaceOrder(ctx context.Context, p principal.Principal, id int64) error
}

type staffService interface {
	ListMembers(ctx context.Context, p principal.Principal, group string) ([]user.User, error)
	AddMember(ctx context.Context, p principal.Principal, group, username string) (user.User, error)
	RemoveMember(ctx context.Context, p principal.Principal, group string, userID int64) error
}

type authenticator interface {
	Authenticate(header string) (int64, error)
}

type identityService interface {
	Resolve(ctx context.Context, userID int64) (principal.Principal, error)
}

// Services bundles everything the HTTP transport serves.
type Services struct {
	Menu     menuService
	Cart     cartService
	Orders   orderService
	Staff    staffService
	Auth     authenticator
	Identity identityService
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	services Services
}

func NewHTTPTransport(services Services) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		services: services,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router, e.g. for httptest.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/swagger/*", docs.SwaggerUI())

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", docs.Spec)

		r.Get("/categories", h.listCategories)
		r.Get("/menu-items", h.listMenuItems)
		r.Get("/menu-items/{id}", h.getMenuItem)

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware(h.services.Auth, h.services.Identity))

			r.Get("/cart/menu-items", h.listCart)
			r.Post("/cart/menu-items", h.upsertCart)
			r.Delete("/cart/menu-items", h.clearCart)

			r.Get("/orders", h.listOrders)
			r.Post("/orders", h.createOrder)
			r.Get("/orders/{id}", h.getOrder)
			r.Patch("/orders/{id}", h.updateOrder)
			r.Put("/orders/{id}", h.replaceOrder)

			r.Get("/groups/{group}/users", h.listGroupMembers)
			r.Post("/groups/{group}/users", h.addGroupMember)
			r.Delete("/groups/{group}/users/{userId}", h.removeGroupMember)
		})
	})
}

func (h *HTTPTransport) listCategories(w http.ResponseWriter, r *http.Request) {
	menu.ListCategories(w, r, h.services.Menu)
}

func (h *HTTPTransport) listMenuItems(w http.ResponseWriter, r *http.Request) {
	menu.ListMenuItems(w, r, h.services.Menu)
}

func (h *HTTPTransport) getMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.GetMenuItem(w, r, h.services.Menu)
}

func (h *HTTPTransport) listCart(w http.ResponseWriter, r *http.Request) {
	cart.List(w, r, h.services.Cart)
}

func (h *HTTPTransport) upsertCart(w http.ResponseWriter, r *http.Request) {
	cart.Upsert(w, r, h.services.Cart)
}

func (h *HTTPTransport) clearCart(w http.ResponseWriter, r *http.Request) {
	cart.Clear(w, r, h.services.Cart)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	orders.List(w, r, h.services.Orders)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	orders.Create(w, r, h.services.Orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	orders.Get(w, r, h.services.Orders)
}

func (h *HTTPTransport) updateOrder(w http.ResponseWriter, r *http.Request) {
	orders.Update(w, r, h.services.Orders)
}

func (h *HTTPTransport) replaceOrder(w http.ResponseWriter, r *http.Request) {
	orders.Replace(w, r, h.services.Orders)
}

func (h *HTTPTransport) listGroupMembers(w http.ResponseWriter, r *http.Request) {
	groups.ListMembers(w, r, h.services.Staff)
}

func (h *HTTPTransport) addGroupMember(w http.ResponseWriter, r *http.Request) {
	groups.AddMember(w, r, h.services.Staff)
}

func (h *HTTPTransport) removeGroupMember(w http.ResponseWriter, r *http.Request) {
	groups.RemoveMember(w, r, h.services.Staff)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
