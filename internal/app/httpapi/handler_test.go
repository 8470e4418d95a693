package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	app "github.com/commercegrid/backoffice/internal/app"
	"github.com/commercegrid/backoffice/internal/app/domain/user"
	"github.com/commercegrid/backoffice/internal/middleware"
	"github.com/commercegrid/backoffice/pkg/logger"
)

func newTestHandler(t *testing.T) (http.Handler, *app.Application) {
	t.Helper()
	application, err := app.New(app.Stores{}, nil, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return NewHandler(application, Options{}), application
}

func marshal(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, marshal(t, body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope from %s %s: %v (body: %s)", method, path, err, resp.Body.String())
	}
	return resp, env
}

func TestPublishFlow(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp, env := doJSON(t, handler, http.MethodPost, "/products", map[string]any{
		"sku": "SKU-1", "name": "Widget", "status": "active",
	})
	if resp.Code != http.StatusCreated || !env.Success {
		t.Fatalf("create product: code=%d env=%+v", resp.Code, env)
	}
	productID := env.Data.(map[string]any)["ID"].(string)

	resp, env = doJSON(t, handler, http.MethodPost, "/catalog/sections", map[string]any{"name": "Featured"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create section: code=%d env=%+v", resp.Code, env)
	}
	section := env.Data.(map[string]any)
	sectionID := section["ID"].(string)
	if section["Slug"] != "featured" {
		t.Fatalf("slug = %v, want derived 'featured'", section["Slug"])
	}

	resp, env = doJSON(t, handler, http.MethodPost, "/catalog/publish", map[string]any{
		"item_kind":   "product",
		"item_ids":    []string{productID},
		"section_ids": []string{sectionID},
	})
	if resp.Code != http.StatusOK || !env.Success {
		t.Fatalf("publish: code=%d env=%+v", resp.Code, env)
	}
	counts := env.Data.(map[string]any)
	if counts["addedCount"].(float64) != 1 {
		t.Fatalf("addedCount = %v, want 1", counts["addedCount"])
	}

	resp, env = doJSON(t, handler, http.MethodGet, "/products/"+productID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get product: code=%d", resp.Code)
	}
	if env.Data.(map[string]any)["Published"] != true {
		t.Fatalf("product should be published: %+v", env.Data)
	}

	resp, env = doJSON(t, handler, http.MethodPost, "/catalog/unpublish", map[string]any{
		"item_kind":   "product",
		"item_ids":    []string{productID},
		"section_ids": []string{sectionID},
	})
	if resp.Code != http.StatusOK || !env.Success {
		t.Fatalf("unpublish: code=%d env=%+v", resp.Code, env)
	}
	if env.Data.(map[string]any)["removedCount"].(float64) != 1 {
		t.Fatalf("removedCount = %v, want 1", env.Data)
	}
}

func TestPublishValidationFailureEnvelope(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, env := doJSON(t, handler, http.MethodPost, "/catalog/sections", map[string]any{"name": "Front"})
	sectionID := env.Data.(map[string]any)["ID"].(string)

	resp, env := doJSON(t, handler, http.MethodPost, "/catalog/publish", map[string]any{
		"item_kind":   "product",
		"item_ids":    []string{"ghost"},
		"section_ids": []string{sectionID},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", resp.Code)
	}
	if env.Success {
		t.Fatalf("success must be false on validation failure")
	}
	if env.Message != "Unknown products: ghost" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestReplaceSectionMappingsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	var productIDs []string
	for _, name := range []string{"A", "B"} {
		_, env := doJSON(t, handler, http.MethodPost, "/products", map[string]any{
			"sku": "SKU-" + name, "name": name, "status": "active",
		})
		productIDs = append(productIDs, env.Data.(map[string]any)["ID"].(string))
	}
	_, env := doJSON(t, handler, http.MethodPost, "/catalog/sections", map[string]any{"name": "Front"})
	sectionID := env.Data.(map[string]any)["ID"].(string)

	resp, env := doJSON(t, handler, http.MethodPost, "/catalog/sections/"+sectionID+"/mappings", map[string]any{
		"item_kind": "product",
		"item_ids":  []string{productIDs[1], productIDs[0]},
	})
	if resp.Code != http.StatusOK || !env.Success {
		t.Fatalf("replace: code=%d env=%+v", resp.Code, env)
	}

	resp, env = doJSON(t, handler, http.MethodGet, "/catalog/sections/"+sectionID+"/mappings?item_kind=product", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list mappings: code=%d", resp.Code)
	}
	rows := env.Data.([]any)
	if len(rows) != 2 {
		t.Fatalf("got %d mappings, want 2", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["ItemID"] != productIDs[1] || first["Position"].(float64) != 0 {
		t.Fatalf("first mapping = %+v, want %s at position 0", first, productIDs[1])
	}
}

func TestNotFoundMapsTo404(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp, env := doJSON(t, handler, http.MethodGet, "/users/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", resp.Code)
	}
	if env.Success {
		t.Fatalf("success must be false")
	}
}

func TestLoginIssuesTokenAndAuthGuardsRoutes(t *testing.T) {
	application, err := app.New(app.Stores{}, nil, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	log := logger.NewDefault("test")
	auth := middleware.NewAuthMiddleware([]byte("test-secret"), log, []string{"/healthz", "/auth/login"})
	handler := NewHandler(application, Options{Auth: auth, Log: log})

	if _, err := application.Users.Create(context.Background(), "admin@example.com", "Admin", "correct-horse", user.RoleAdmin); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: code = %d, want 401", resp.Code)
	}

	resp, env := doJSON(t, handler, http.MethodPost, "/auth/login", map[string]any{
		"email": "admin@example.com", "password": "correct-horse",
	})
	if resp.Code != http.StatusOK || !env.Success {
		t.Fatalf("login: code=%d env=%+v", resp.Code, env)
	}
	token := env.Data.(map[string]any)["token"].(string)
	if token == "" {
		t.Fatalf("empty token")
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("authenticated list: code = %d, want 200 (body: %s)", recorder.Code, recorder.Body.String())
	}

	resp, env = doJSON(t, handler, http.MethodPost, "/auth/login", map[string]any{
		"email": "admin@example.com", "password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("bad password login: code=%d env=%+v", resp.Code, env)
	}
}

func TestHealthzWithoutDatabase(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp, env := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", resp.Code)
	}
	if env.Data.(map[string]any)["database"] != "memory" {
		t.Fatalf("database field = %v, want memory", env.Data)
	}
}
