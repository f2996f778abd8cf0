package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/apperr"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/catalog"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/credentials"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/ledger"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/lockout"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/domain/reports"
	"github.com/Denjirooods/Dental-Clinic-BUGAWAN/internal/infra/sessions"
)

// Handler wires the domain services to the JSON API. It owns no business
// rules beyond the login sequencing contract: check the lock, verify
// credentials, then record the outcome.
type Handler struct {
	ledger      *ledger.Service
	lockout     *lockout.Service
	credentials *credentials.Service
	catalog     *catalog.Service
	reports     *reports.Service
	sessions    *sessions.Manager
	defaultCat  int64
	log         *slog.Logger
}

func NewHandler(
	led *ledger.Service,
	lock *lockout.Service,
	creds *credentials.Service,
	cat *catalog.Service,
	rep *reports.Service,
	sess *sessions.Manager,
	defaultCategoryID int64,
	log *slog.Logger,
) *Handler {
	return &Handler{
		ledger:      led,
		lockout:     lock,
		credentials: creds,
		catalog:     cat,
		reports:     rep,
		sessions:    sess,
		defaultCat:  defaultCategoryID,
		log:         log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", h.handleRegister)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/logout", h.withAuth(h.handleLogout))

	mux.HandleFunc("GET /api/items", h.withAuth(h.handleListItems))
	mux.HandleFunc("POST /api/items", h.withAuth(h.handleCreateItem))
	mux.HandleFunc("GET /api/items/low_stock", h.withAuth(h.handleLowStock))
	mux.HandleFunc("GET /api/items/{id}", h.withAuth(h.handleGetItem))
	mux.HandleFunc("PUT /api/items/{id}", h.withAuth(h.handleSetItem))
	mux.HandleFunc("DELETE /api/items/{id}", h.withAuth(h.handleDeleteItem))
	mux.HandleFunc("POST /api/items/{id}/deduct", h.withAuth(h.handleDeduct))

	mux.HandleFunc("GET /api/categories", h.withAuth(h.handleListCategories))
	mux.HandleFunc("POST /api/categories", h.withAuth(h.handleAddCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", h.withAuth(h.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", h.withAuth(h.handleListTransactions))
	mux.HandleFunc("GET /api/reports", h.withAuth(h.handleReports))
	mux.HandleFunc("GET /api/export", h.withAuth(h.handleExportCSV))
	mux.HandleFunc("GET /api/export.xlsx", h.withAuth(h.handleExportXLSX))
}

/* Auth */

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validationf("invalid request body"))
		return
	}
	if err := h.credentials.Register(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// handleLogin sequences the authentication contract: lock check first,
// credential check second, outcome recorded last. Failures are reported with
// one generic message regardless of the cause.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validationf("invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, apperr.Validationf("username and password are required"))
		return
	}

	status, err := h.lockout.CheckLock(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	if status.Locked {
		remaining := status.Remaining.Round(time.Second)
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf("account locked, try again in %s", remaining),
		})
		return
	}

	ident, err := h.credentials.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if ident == nil {
		if err := h.lockout.RecordFailure(r.Context(), req.Username); err != nil {
			h.log.Error("recording login failure", "username", req.Username, "err", err)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
		return
	}

	if err := h.lockout.RecordSuccess(r.Context(), req.Username); err != nil {
		h.log.Error("clearing login attempts", "username", req.Username, "err", err)
	}
	token := h.sessions.Create(*ident)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	h.sessions.Destroy(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, actor credentials.Identity)

func (h *Handler) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.sessions.Lookup(bearerToken(r))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}
		next(w, r, actor)
	}
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

/* Items */

type itemRequest struct {
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	MinLevel   int64  `json:"min_level"`
	Unit       string `json:"unit"`
	CategoryID int64  `json:"category_id"`
}

type itemResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	MinLevel   int64  `json:"min_level"`
	Unit       string `json:"unit"`
	CategoryID int64  `json:"category_id"`
	LowStock   bool   `json:"low_stock"`
}

func toItemResponse(it ledger.Item) itemResponse {
	return itemResponse{
		ID:         it.ID,
		Name:       it.Name,
		Quantity:   it.Quantity,
		MinLevel:   it.MinLevel,
		Unit:       it.Unit,
		CategoryID: it.CategoryID,
		LowStock:   it.LowStock(),
	}
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request, actor credentials.Identity) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validationf("invalid request body"))
		return
	}
	if req.CategoryID == 0 {
		req.CategoryID = h.defaultCat
	}
	id, err := h.ledger.CreateItem(r.Context(), req.Name, req.Quantity, req.MinLevel, req.Unit, req.CategoryID, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleSetItem(w http.ResponseWriter, r *http.Request, actor credentials.Identity) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validationf("invalid request body"))
		return
	}
	if req.CategoryID == 0 {
		req.CategoryID = h.defaultCat
	}
	if err := h.ledger.SetItem(r.Context(), id, req.Name, req.Quantity, req.MinLevel, req.Unit, req.CategoryID, actor.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDeduct(w http.ResponseWriter, r *http.Request, actor credentials.Identity) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validationf("invalid request body"))
		return
	}
	newQty, err := h.ledger.Deduct(r.Context(), id, req.Amount, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"quantity": newQty})
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.ledger.DeleteItem(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	it, err := h.ledger.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if it == nil {
		writeError(w, apperr.NotFoundf("item %d", id))
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(*it))
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	items, err := h.ledger.ListItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	items, err := h.ledger.LowStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

/* Categories */

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *Handler) handleAddCategory(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Validationf("invalid request body"))
		return
	}
	id, err := h.catalog.AddCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/* Transactions and reports */

type transactionResponse struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name,omitempty"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Reason    string    `json:"reason"`
	ActorName string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	txs, err := h.ledger.ListTransactions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionResponse{
			ID:        t.ID,
			ItemID:    t.ItemID,
			ItemName:  t.ItemName,
			Type:      string(t.Type),
			Quantity:  t.Quantity,
			Reason:    t.Reason,
			ActorName: t.ActorName,
			CreatedAt: t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	sum, err := h.reports.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	top, err := h.reports.TopItems(r.Context(), 10)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.reports.CategoryStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	topOut := make([]itemResponse, 0, len(top))
	for _, it := range top {
		topOut = append(topOut, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_items":     sum.TotalItems,
		"low_stock_count": sum.LowStockCount,
		"top_items":       topOut,
		"category_stats":  stats,
	})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=inventory_report.csv`)
	if err := h.reports.WriteCSV(r.Context(), w); err != nil {
		h.log.Error("csv export", "err", err)
	}
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request, _ credentials.Identity) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename=inventory_report.xlsx`)
	if err := h.reports.WriteXLSX(r.Context(), w); err != nil {
		h.log.Error("xlsx export", "err", err)
	}
}

/* Helpers */

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrInUse):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrBusy):
		status = http.StatusServiceUnavailable
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
