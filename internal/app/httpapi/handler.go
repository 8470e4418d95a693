// Package httpapi exposes the back-office REST API. Every response uses the
// uniform envelope {success, message, data}.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/commercegrid/backoffice/internal/app"
	"github.com/commercegrid/backoffice/internal/app/domain/catalog"
	"github.com/commercegrid/backoffice/internal/app/domain/user"
	"github.com/commercegrid/backoffice/internal/app/services/publication"
	"github.com/commercegrid/backoffice/internal/app/services/users"
	"github.com/commercegrid/backoffice/internal/app/storage"
	apierrors "github.com/commercegrid/backoffice/internal/errors"
	"github.com/commercegrid/backoffice/internal/metrics"
	"github.com/commercegrid/backoffice/internal/middleware"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// Options carries the cross-cutting dependencies of the handler.
type Options struct {
	Auth      *middleware.AuthMiddleware
	RateLimit *middleware.RateLimiter
	CORS      *middleware.CORSMiddleware
	Metrics   *metrics.Metrics
	Log       *logger.Logger
	TokenTTL  time.Duration
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app      *app.Application
	auth     *middleware.AuthMiddleware
	tokenTTL time.Duration
	log      *logger.Logger
}

// NewHandler returns a router exposing the REST API with the middleware
// chain applied.
func NewHandler(application *app.Application, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logger.NewDefault("httpapi")
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	h := &handler{app: application, auth: opts.Auth, tokenTTL: opts.TokenTTL, log: opts.Log}

	r := mux.NewRouter()
	if opts.CORS != nil {
		r.Use(opts.CORS.Handler)
	}
	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
	}
	r.Use(middleware.LoggingMiddleware(opts.Log))
	if opts.Auth != nil {
		r.Use(opts.Auth.Handler)
	}
	if opts.RateLimit != nil {
		r.Use(opts.RateLimit.Handler)
	}

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	r.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/batch-delete", h.batchDeleteUsers).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", h.updateUser).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id}", h.deleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/users/{id}/status", h.setUserStatus).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}/password", h.changePassword).Methods(http.MethodPut)

	r.HandleFunc("/groups", h.createGroup).Methods(http.MethodPost)
	r.HandleFunc("/groups", h.listGroups).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}", h.getGroup).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}", h.updateGroup).Methods(http.MethodPatch)
	r.HandleFunc("/groups/{id}", h.deleteGroup).Methods(http.MethodDelete)
	r.HandleFunc("/groups/{id}/members", h.listMembers).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}/members", h.addMembers).Methods(http.MethodPost)
	r.HandleFunc("/groups/{id}/members", h.removeMembers).Methods(http.MethodDelete)

	r.HandleFunc("/regions", h.createRegion).Methods(http.MethodPost)
	r.HandleFunc("/regions", h.listRegions).Methods(http.MethodGet)
	r.HandleFunc("/regions/{id}", h.getRegion).Methods(http.MethodGet)
	r.HandleFunc("/regions/{id}", h.updateRegion).Methods(http.MethodPatch)
	r.HandleFunc("/regions/{id}", h.deleteRegion).Methods(http.MethodDelete)

	r.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	r.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.updateProduct).Methods(http.MethodPatch)
	r.HandleFunc("/products/{id}", h.deleteProduct).Methods(http.MethodDelete)
	r.HandleFunc("/products/{id}/prices", h.listPrices).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}/prices/{regionID}", h.setPrice).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}/prices/{regionID}", h.deletePrice).Methods(http.MethodDelete)

	r.HandleFunc("/services", h.createService).Methods(http.MethodPost)
	r.HandleFunc("/services", h.listServices).Methods(http.MethodGet)
	r.HandleFunc("/services/{id}", h.getService).Methods(http.MethodGet)
	r.HandleFunc("/services/{id}", h.updateService).Methods(http.MethodPatch)
	r.HandleFunc("/services/{id}", h.deleteService).Methods(http.MethodDelete)

	r.HandleFunc("/catalog/sections/reorder", h.reorderSections).Methods(http.MethodPost)
	r.HandleFunc("/catalog/sections", h.createSection).Methods(http.MethodPost)
	r.HandleFunc("/catalog/sections", h.listSections).Methods(http.MethodGet)
	r.HandleFunc("/catalog/sections/{id}", h.getSection).Methods(http.MethodGet)
	r.HandleFunc("/catalog/sections/{id}", h.updateSection).Methods(http.MethodPatch)
	r.HandleFunc("/catalog/sections/{id}", h.deleteSection).Methods(http.MethodDelete)
	r.HandleFunc("/catalog/sections/{id}/mappings", h.listSectionMappings).Methods(http.MethodGet)
	r.HandleFunc("/catalog/sections/{id}/mappings", h.replaceSectionMappings).Methods(http.MethodPost)

	r.HandleFunc("/catalog/publish", h.publish).Methods(http.MethodPost)
	r.HandleFunc("/catalog/unpublish", h.unpublish).Methods(http.MethodPost)

	return r
}

// envelope is the uniform response shape.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Message: err.Error()})
}

// writeServiceError maps service-layer errors onto HTTP statuses. Validation
// failures surface as 400 with the service's message; unknown rows as 404.
func writeServiceError(w http.ResponseWriter, err error) {
	var valErr *publication.ValidationError
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, valErr)
	case errors.As(err, &apiErr):
		writeError(w, apiErr.Status, apiErr)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	report := h.app.Health.Check(r.Context())
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: report.Status == "ok", Message: report.Status, Data: report})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := h.auth.IssueToken(u.ID, u.Email, string(u.Role), h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token":   token,
		"user_id": u.ID,
		"role":    u.Role,
	})
}

func (h *handler) publish(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ItemKind   string   `json:"item_kind"`
		ItemIDs    []string `json:"item_ids"`
		SectionIDs []string `json:"section_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.app.Publication.Publish(r.Context(), catalog.ItemKind(payload.ItemKind), payload.ItemIDs, payload.SectionIDs, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Items published", result)
}

func (h *handler) unpublish(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ItemKind   string   `json:"item_kind"`
		ItemIDs    []string `json:"item_ids"`
		SectionIDs []string `json:"section_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.app.Publication.Unpublish(r.Context(), catalog.ItemKind(payload.ItemKind), payload.ItemIDs, payload.SectionIDs, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Items unpublished", result)
}

func (h *handler) replaceSectionMappings(w http.ResponseWriter, r *http.Request) {
	sectionID := mux.Vars(r)["id"]
	var payload struct {
		ItemKind string   `json:"item_kind"`
		ItemIDs  []string `json:"item_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.app.Publication.ReplaceSection(r.Context(), catalog.ItemKind(payload.ItemKind), sectionID, payload.ItemIDs, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Section mappings replaced", result)
}

func (h *handler) listSectionMappings(w http.ResponseWriter, r *http.Request) {
	kind := catalog.ItemKind(r.URL.Query().Get("item_kind"))
	if kind == "" {
		kind = catalog.KindProduct
	}
	mappings, err := h.app.Catalog.SectionMappings(r.Context(), kind, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", mappings)
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
		Role        string `json:"role"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Users.Create(r.Context(), payload.Email, payload.DisplayName, payload.Password, user.Role(payload.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "User created", created)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", u)
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DisplayName *string `json:"display_name"`
		Role        *string `json:"role"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var role *user.Role
	if payload.Role != nil {
		r := user.Role(*payload.Role)
		role = &r
	}
	updated, err := h.app.Users.Update(r.Context(), mux.Vars(r)["id"], payload.DisplayName, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "User updated", updated)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Users.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "User deleted", nil)
}

func (h *handler) batchDeleteUsers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(payload.IDs) == 0 {
		writeError(w, http.StatusBadRequest, apierrors.BadRequest("ids is required"))
		return
	}
	writeJSON(w, http.StatusOK, "Batch delete processed", h.app.Users.BatchDelete(r.Context(), payload.IDs))
}

func (h *handler) setUserStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.Users.SetStatus(r.Context(), mux.Vars(r)["id"], user.Status(payload.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "User status updated", updated)
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Users.ChangePassword(r.Context(), mux.Vars(r)["id"], payload.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Password changed", nil)
}

func (h *handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Groups.Create(r.Context(), payload.Name, payload.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Group created", created)
}

func (h *handler) listGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Groups.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (h *handler) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.app.Groups.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", g)
}

func (h *handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.Groups.Update(r.Context(), mux.Vars(r)["id"], payload.Name, payload.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Group updated", updated)
}

func (h *handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Groups.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Group deleted", nil)
}

func (h *handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.app.Groups.Members(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", members)
}

func (h *handler) addMembers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := h.app.Groups.AddMembers(r.Context(), mux.Vars(r)["id"], payload.UserIDs, middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Members processed", results)
}

func (h *handler) removeMembers(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := h.app.Groups.RemoveMembers(r.Context(), mux.Vars(r)["id"], payload.UserIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Members processed", results)
}

func (h *handler) createRegion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code     string `json:"code"`
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Regions.Create(r.Context(), payload.Code, payload.Name, payload.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Region created", created)
}

func (h *handler) listRegions(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Regions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (h *handler) getRegion(w http.ResponseWriter, r *http.Request) {
	reg, err := h.app.Regions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", reg)
}

func (h *handler) updateRegion(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     *string `json:"name"`
		Currency *string `json:"currency"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.Regions.Update(r.Context(), mux.Vars(r)["id"], payload.Name, payload.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Region updated", updated)
}

func (h *handler) deleteRegion(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Regions.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Region deleted", nil)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SKU         string `json:"sku"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Catalog.CreateProduct(r.Context(), payload.SKU, payload.Name, payload.Description, catalog.ItemStatus(payload.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Product created", created)
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", p)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var status *catalog.ItemStatus
	if payload.Status != nil {
		s := catalog.ItemStatus(*payload.Status)
		status = &s
	}
	updated, err := h.app.Catalog.UpdateProduct(r.Context(), mux.Vars(r)["id"], payload.Name, payload.Description, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product updated", updated)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Product deleted", nil)
}

func (h *handler) listPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.app.Pricing.ListForProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", prices)
}

func (h *handler) setPrice(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	vars := mux.Vars(r)
	price, err := h.app.Pricing.Set(r.Context(), vars["id"], vars["regionID"], payload.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Price set", price)
}

func (h *handler) deletePrice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.app.Pricing.Delete(r.Context(), vars["id"], vars["regionID"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Price deleted", nil)
}

func (h *handler) createService(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Catalog.CreateService(r.Context(), payload.Name, payload.Description, catalog.ItemStatus(payload.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Service created", created)
}

func (h *handler) listServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Catalog.ListServices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (h *handler) getService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.app.Catalog.GetService(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", svc)
}

func (h *handler) updateService(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var status *catalog.ItemStatus
	if payload.Status != nil {
		s := catalog.ItemStatus(*payload.Status)
		status = &s
	}
	updated, err := h.app.Catalog.UpdateService(r.Context(), mux.Vars(r)["id"], payload.Name, payload.Description, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Service updated", updated)
}

func (h *handler) deleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteService(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Service deleted", nil)
}

func (h *handler) createSection(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.app.Catalog.CreateSection(r.Context(), payload.Name, payload.Slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Section created", created)
}

func (h *handler) listSections(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Catalog.ListSections(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, "", list)
}

func (h *handler) getSection(w http.ResponseWriter, r *http.Request) {
	sec, err := h.app.Catalog.GetSection(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "", sec)
}

func (h *handler) updateSection(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name *string `json:"name"`
		Slug *string `json:"slug"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.app.Catalog.UpdateSection(r.Context(), mux.Vars(r)["id"], payload.Name, payload.Slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Section updated", updated)
}

func (h *handler) deleteSection(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteSection(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Section deleted", nil)
}

func (h *handler) reorderSections(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SectionIDs []string `json:"section_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.app.Catalog.ReorderSections(r.Context(), payload.SectionIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Sections reordered", nil)
}
