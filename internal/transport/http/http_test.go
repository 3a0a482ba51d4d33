package httptransport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/corray333/littlelemon/internal/dal/memory"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/services/cartsvc"
	"github.com/corray333/littlelemon/internal/service/services/identitysvc"
	"github.com/corray333/littlelemon/internal/service/services/menusvc"
	"github.com/corray333/littlelemon/internal/service/services/ordersvc"
	"github.com/corray333/littlelemon/internal/service/services/staffsvc"
	"github.com/corray333/littlelemon/pkg/auth"
	"github.com/corray333/littlelemon/pkg/keymutex"
)

type testServer struct {
	t      *testing.T
	server *httptest.Server
	auth   *auth.Authenticator
	users  map[string]user.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	err := store.Load(memory.Seed{
		Categories: []memory.SeedCategory{{Slug: "bakery", Title: "Bakery"}},
		MenuItems: []memory.SeedMenuItem{
			{Title: "bread", Price: "2", Category: "bakery"},
			{Title: "cake", Price: "3", Category: "bakery", Featured: true},
		},
		Users: []memory.SeedUser{
			{Username: "alice"},
			{Username: "bob"},
			{Username: "mary", Groups: []string{user.GroupManager}},
			{Username: "dave", Groups: []string{user.GroupDeliveryCrew}},
		},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	users := map[string]user.User{}
	for _, name := range []string{"alice", "bob", "mary", "dave"} {
		u, err := store.NewUnitOfWork().UserRepository().GetByUsername(t.Context(), name)
		if err != nil {
			t.Fatalf("GetByUsername(%q) error = %v", name, err)
		}
		users[name] = u
	}

	factory := store.Factory()
	locks := keymutex.New[int64]()
	authenticator := auth.NewAuthenticator("test-secret", "littlelemon")

	transport := NewHTTPTransport(Services{
		Menu:     menusvc.MustNewMenuService(menusvc.WithUnitOfWork(factory)),
		Cart:     cartsvc.MustNewCartService(cartsvc.WithUnitOfWork(factory), cartsvc.WithUserLocks(locks)),
		Orders:   ordersvc.MustNewOrderService(ordersvc.WithUnitOfWork(factory), ordersvc.WithUserLocks(locks)),
		Staff:    staffsvc.MustNewStaffService(staffsvc.WithUnitOfWork(factory)),
		Auth:     authenticator,
		Identity: identitysvc.NewIdentityService(factory),
	})
	transport.RegisterRoutes()

	server := httptest.NewServer(transport.Handler())
	t.Cleanup(server.Close)

	return &testServer{t: t, server: server, auth: authenticator, users: users}
}

func (s *testServer) token(username string) string {
	s.t.Helper()

	u := s.users[username]
	token, err := s.auth.Issue(u.ID, u.Username, time.Hour)
	if err != nil {
		s.t.Fatalf("Issue() error = %v", err)
	}

	return token
}

// do sends a request as username; an empty username sends no credentials.
func (s *testServer) do(method, path, username, contentType, body string) (int, string) {
	s.t.Helper()

	req, err := http.NewRequestWithContext(s.t.Context(), method, s.server.URL+path, strings.NewReader(body))
	if err != nil {
		s.t.Fatalf("NewRequest() error = %v", err)
	}
	if username != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(username))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.server.Client().Do(req)
	if err != nil {
		s.t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatalf("read body: %v", err)
	}

	return resp.StatusCode, string(raw)
}

func (s *testServer) doJSON(method, path, username, body string) (int, string) {
	return s.do(method, path, username, "application/json", body)
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()

	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}

	return v
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type orderResponse struct {
	ID            int64  `json:"id"`
	User          int64  `json:"user"`
	DeliveryAgent *int64 `json:"deliveryAgent"`
	Status        int    `json:"status"`
	Total         string `json:"total"`
	Lines         []struct {
		MenuItem int64  `json:"menuItem"`
		Quantity int    `json:"quantity"`
		Price    string `json:"price"`
	} `json:"lines"`
}

func TestMenuIsPublic(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCount  int
	}{
		{name: "all items", path: "/api/menu-items", wantStatus: http.StatusOK, wantCount: 2},
		{name: "featured", path: "/api/menu-items?featured=true", wantStatus: http.StatusOK, wantCount: 1},
		{name: "by category", path: "/api/menu-items?category=bakery&sort=-price", wantStatus: http.StatusOK, wantCount: 2},
		{name: "categories", path: "/api/categories", wantStatus: http.StatusOK, wantCount: 1},
		{name: "unknown sort field", path: "/api/menu-items?sort=calories", wantStatus: http.StatusBadRequest},
		{name: "page too large", path: "/api/menu-items?pageSize=1000", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(http.MethodGet, tt.path, "", "", "")
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", status, tt.wantStatus, body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if items := decode[[]map[string]any](t, body); len(items) != tt.wantCount {
				t.Errorf("got %d items, want %d", len(items), tt.wantCount)
			}
		})
	}

	status, body := s.do(http.MethodGet, "/api/menu-items/2", "", "", "")
	if status != http.StatusOK || decode[map[string]any](t, body)["title"] != "cake" {
		t.Errorf("GET /api/menu-items/2 = %d %s", status, body)
	}
	if status, _ := s.do(http.MethodGet, "/api/menu-items/abc", "", "", ""); status != http.StatusNotFound {
		t.Errorf("GET /api/menu-items/abc = %d, want 404", status)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/cart/menu-items", "/api/orders", "/api/groups/manager/users"} {
		status, body := s.do(http.MethodGet, path, "", "", "")
		if status != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, status)
		}
		if decode[errorResponse](t, body).Error == "" {
			t.Errorf("GET %s error body = %s", path, body)
		}
	}

	forged, err := auth.NewAuthenticator("other-secret", "littlelemon").Issue(s.users["alice"].ID, "alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, s.server.URL+"/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	resp, err := s.server.Client().Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", resp.StatusCode)
	}
}

func TestCart(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantField   string
	}{
		{name: "json add", contentType: "application/json", body: `{"menuitem": 1, "quantity": 2}`, wantStatus: http.StatusCreated},
		{name: "form add", contentType: "application/x-www-form-urlencoded", body: url.Values{"menuitem": {"2"}, "quantity": {"1"}}.Encode(), wantStatus: http.StatusCreated},
		{name: "remove absent line", contentType: "application/json", body: `{"menuitem": 2, "quantity": 0}`, wantStatus: http.StatusNoContent},
		{name: "negative quantity", contentType: "application/json", body: `{"menuitem": 1, "quantity": -1}`, wantStatus: http.StatusBadRequest, wantField: "quantity"},
		{name: "unknown item", contentType: "application/json", body: `{"menuitem": 42, "quantity": 1}`, wantStatus: http.StatusBadRequest, wantField: "menuItem"},
		{name: "missing quantity", contentType: "application/json", body: `{"menuitem": 1}`, wantStatus: http.StatusBadRequest, wantField: "quantity"},
		{name: "quantity above the maximum", contentType: "application/json", body: `{"menuitem": 1, "quantity": 1001}`, wantStatus: http.StatusBadRequest, wantField: "quantity"},
		{name: "quantity beyond smallint", contentType: "application/x-www-form-urlencoded", body: url.Values{"menuitem": {"1"}, "quantity": {"40000"}}.Encode(), wantStatus: http.StatusBadRequest, wantField: "quantity"},
		{name: "malformed json", contentType: "application/json", body: `{"menuitem":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Each case starts from an empty cart for bob.
			if status, _ := s.do(http.MethodDelete, "/api/cart/menu-items", "bob", "", ""); status != http.StatusNoContent {
				t.Fatalf("clear status = %d", status)
			}

			status, body := s.do(http.MethodPost, "/api/cart/menu-items", "bob", tt.contentType, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", status, tt.wantStatus, body)
			}
			if tt.wantField != "" {
				if _, ok := decode[errorResponse](t, body).Fields[tt.wantField]; !ok {
					t.Errorf("error body %s does not name %q", body, tt.wantField)
				}
			}
		})
	}

	s.doJSON(http.MethodPost, "/api/cart/menu-items", "alice", `{"menuitem": 1, "quantity": 2}`)
	s.doJSON(http.MethodPost, "/api/cart/menu-items", "alice", `{"menuitem": 1, "quantity": 3}`)

	status, body := s.do(http.MethodGet, "/api/cart/menu-items", "alice", "", "")
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	lines := decode[[]map[string]any](t, body)
	if len(lines) != 1 || lines[0]["quantity"] != float64(3) || lines[0]["price"] != "6" {
		t.Errorf("alice's cart = %s", body)
	}

	status, body = s.do(http.MethodGet, "/api/cart/menu-items", "bob", "", "")
	if status != http.StatusOK || len(decode[[]map[string]any](t, body)) != 0 {
		t.Errorf("bob's cart = %d %s, want empty", status, body)
	}
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)

	if status, _ := s.do(http.MethodPost, "/api/orders", "alice", "", ""); status != http.StatusNotFound {
		t.Fatalf("checkout of empty cart = %d, want 404", status)
	}

	s.doJSON(http.MethodPost, "/api/cart/menu-items", "alice", `{"menuitem": 1, "quantity": 1}`)
	s.doJSON(http.MethodPost, "/api/cart/menu-items", "alice", `{"menuitem": 2, "quantity": 2}`)

	status, body := s.do(http.MethodPost, "/api/orders", "alice", "", "")
	if status != http.StatusCreated {
		t.Fatalf("checkout = %d: %s", status, body)
	}
	placed := decode[orderResponse](t, body)
	if placed.Total != "8" || len(placed.Lines) != 2 || placed.Status != 0 || placed.DeliveryAgent != nil {
		t.Fatalf("placed order = %s", body)
	}

	status, body = s.do(http.MethodGet, "/api/cart/menu-items", "alice", "", "")
	if status != http.StatusOK || len(decode[[]map[string]any](t, body)) != 0 {
		t.Errorf("cart after checkout = %s", body)
	}

	orderPath := fmt.Sprintf("/api/orders/%d", placed.ID)
	agentID := s.users["dave"].ID

	steps := []struct {
		name       string
		method     string
		username   string
		body       string
		wantStatus int
		wantField  string
	}{
		{name: "owner reads", method: http.MethodGet, username: "alice", wantStatus: http.StatusOK},
		{name: "other customer cannot read", method: http.MethodGet, username: "bob", wantStatus: http.StatusNotFound},
		{name: "unassigned agent cannot read", method: http.MethodGet, username: "dave", wantStatus: http.StatusNotFound},
		{name: "owner cannot update", method: http.MethodPatch, username: "alice", body: `{"status": 1}`, wantStatus: http.StatusForbidden, wantField: "status"},
		{name: "other customer cannot update", method: http.MethodPatch, username: "bob", body: `{"status": 1}`, wantStatus: http.StatusForbidden},
		{name: "manager cannot replace", method: http.MethodPut, username: "mary", body: `{}`, wantStatus: http.StatusForbidden},
		{name: "malformed status", method: http.MethodPatch, username: "mary", body: `{"status": "soon"}`, wantStatus: http.StatusBadRequest, wantField: "status"},
		{name: "unknown status code", method: http.MethodPatch, username: "mary", body: `{"status": 5}`, wantStatus: http.StatusBadRequest, wantField: "status"},
		{name: "agent must be delivery crew", method: http.MethodPatch, username: "mary", body: fmt.Sprintf(`{"deliveryAgent": %d}`, s.users["bob"].ID), wantStatus: http.StatusBadRequest, wantField: "deliveryAgent"},
		{name: "manager assigns", method: http.MethodPatch, username: "mary", body: fmt.Sprintf(`{"deliveryAgent": %d, "status": 1}`, agentID), wantStatus: http.StatusOK},
		{name: "assigned agent reads", method: http.MethodGet, username: "dave", wantStatus: http.StatusOK},
		{name: "agent cannot reassign", method: http.MethodPatch, username: "dave", body: `{"deliveryAgent": null, "status": 2}`, wantStatus: http.StatusForbidden, wantField: "deliveryAgent"},
		{name: "agent delivers", method: http.MethodPatch, username: "dave", body: `{"status": 2}`, wantStatus: http.StatusOK},
		{name: "status cannot go back", method: http.MethodPatch, username: "mary", body: `{"status": 1}`, wantStatus: http.StatusBadRequest, wantField: "status"},
		{name: "missing order", method: http.MethodGet, username: "mary", wantStatus: http.StatusNotFound},
	}

	for _, step := range steps {
		path := orderPath
		if step.name == "missing order" {
			path = "/api/orders/9999"
		}

		status, body := s.doJSON(step.method, path, step.username, step.body)
		if status != step.wantStatus {
			t.Fatalf("%s: status = %d, want %d: %s", step.name, status, step.wantStatus, body)
		}
		if step.wantField != "" {
			if _, ok := decode[errorResponse](t, body).Fields[step.wantField]; !ok {
				t.Errorf("%s: error body %s does not name %q", step.name, body, step.wantField)
			}
		}
	}

	status, body = s.do(http.MethodPut, orderPath, "alice", "application/json", `{}`)
	if status != http.StatusForbidden || decode[errorResponse](t, body).Error != "must use partial update" {
		t.Errorf("PUT = %d %s", status, body)
	}

	for _, path := range []string{"/api/orders/abc", "/api/orders/9999"} {
		status, body = s.do(http.MethodPut, path, "mary", "application/json", `{}`)
		if status != http.StatusForbidden || decode[errorResponse](t, body).Error != "must use partial update" {
			t.Errorf("PUT %s = %d %s", path, status, body)
		}
	}

	status, body = s.doJSON(http.MethodPatch, "/api/orders/9999", "mary", `{"status": 7}`)
	if status != http.StatusNotFound {
		t.Errorf("PATCH unknown status on a missing order = %d %s, want 404", status, body)
	}

	status, body = s.do(http.MethodGet, orderPath, "alice", "", "")
	final := decode[orderResponse](t, body)
	if status != http.StatusOK || final.Status != 2 || final.DeliveryAgent == nil || *final.DeliveryAgent != agentID {
		t.Errorf("final order = %d %s", status, body)
	}

	for username, want := range map[string]int{"alice": 1, "bob": 0, "mary": 1, "dave": 1} {
		status, body := s.do(http.MethodGet, "/api/orders?sort=-date,id&page=1&pageSize=10", username, "", "")
		if status != http.StatusOK {
			t.Fatalf("list as %s = %d %s", username, status, body)
		}
		if got := len(decode[[]orderResponse](t, body)); got != want {
			t.Errorf("list as %s = %d orders, want %d", username, got, want)
		}
	}
}

func TestGroups(t *testing.T) {
	s := newTestServer(t)

	if status, _ := s.do(http.MethodGet, "/api/groups/delivery-crew/users", "alice", "", ""); status != http.StatusForbidden {
		t.Errorf("customer listing crew = %d, want 403", status)
	}
	if status, _ := s.do(http.MethodGet, "/api/groups/chefs/users", "mary", "", ""); status != http.StatusNotFound {
		t.Errorf("unknown group = %d, want 404", status)
	}

	status, body := s.do(http.MethodGet, "/api/groups/delivery-crew/users", "mary", "", "")
	if status != http.StatusOK || len(decode[[]user.User](t, body)) != 1 {
		t.Fatalf("crew = %d %s", status, body)
	}

	if status, body := s.doJSON(http.MethodPost, "/api/groups/delivery-crew/users", "mary", ""); status != http.StatusBadRequest {
		t.Errorf("add without username = %d %s, want 400", status, body)
	}

	status, body = s.do(http.MethodPost, "/api/groups/delivery-crew/users", "mary",
		"application/x-www-form-urlencoded", url.Values{"username": {"bob"}}.Encode())
	if status != http.StatusCreated || decode[user.User](t, body).Username != "bob" {
		t.Fatalf("add bob = %d %s", status, body)
	}

	status, body = s.do(http.MethodGet, "/api/groups/delivery-crew/users", "mary", "", "")
	if status != http.StatusOK || len(decode[[]user.User](t, body)) != 2 {
		t.Errorf("crew after add = %s", body)
	}

	bobPath := fmt.Sprintf("/api/groups/delivery-crew/users/%d", s.users["bob"].ID)
	if status, _ := s.do(http.MethodDelete, bobPath, "mary", "", ""); status != http.StatusNoContent {
		t.Errorf("remove bob = %d, want 204", status)
	}
	if status, _ := s.do(http.MethodDelete, bobPath, "mary", "", ""); status != http.StatusNotFound {
		t.Errorf("remove bob twice = %d, want 404", status)
	}
}

func TestDocs(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodGet, "/api/openapi.json", "", "", "")
	if status != http.StatusOK {
		t.Fatalf("openapi status = %d", status)
	}
	if _, ok := decode[map[string]any](t, body)["paths"]; !ok {
		t.Errorf("openapi document has no paths")
	}
}
