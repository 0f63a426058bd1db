package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
	"github.com/thunkthsy/punto-de-venta/backend/internal/service"
)

// Handler exposes the POS terminal API over HTTP.
type Handler struct {
	checkout *service.CheckoutService
	catalog  repository.CatalogStore
	tickets  repository.TicketStore
}

func NewHandler(checkout *service.CheckoutService, catalog repository.CatalogStore, tickets repository.TicketStore) *Handler {
	return &Handler{
		checkout: checkout,
		catalog:  catalog,
		tickets:  tickets,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/search", h.handleSearchProducts)
	mux.HandleFunc("GET /api/products/zero-stock", h.handleZeroStock)
	mux.HandleFunc("GET /api/departments", h.handleGetDepartments)
	mux.HandleFunc("GET /api/units", h.handleGetUnits)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddItem)
	mux.HandleFunc("PUT /api/cart/items/{code}", h.handleSetQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{code}", h.handleRemoveItem)

	mux.HandleFunc("POST /api/checkout/charge", h.handleCharge)
	mux.HandleFunc("POST /api/checkout/tender", h.handleTender)
	mux.HandleFunc("POST /api/checkout/hold", h.handleHold)
	mux.HandleFunc("POST /api/checkout/abandon", h.handleAbandon)

	mux.HandleFunc("POST /api/tickets/{folio}/resume", h.handleResume)
	mux.HandleFunc("GET /api/tickets/open", h.handleOpenFolios)
	mux.HandleFunc("GET /api/tickets/closed", h.handleClosedFolios)
}

// writeError maps domain errors to status codes; anything unknown is a
// store failure and maps to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrProductNotFound),
		errors.Is(err, entity.ErrTicketNotFound),
		errors.Is(err, entity.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrOutOfStock),
		errors.Is(err, entity.ErrInsufficientStock),
		errors.Is(err, entity.ErrEmptyCart),
		errors.Is(err, entity.ErrInsufficientPayment),
		errors.Is(err, entity.ErrStockConflict),
		errors.Is(err, entity.ErrDepartmentNotFound),
		errors.Is(err, entity.ErrFolioPoolExhausted):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrWrongState):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "err", err)
		http.Error(w, "internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []entity.Product
		err      error
	)
	if department := r.URL.Query().Get("department"); department != "" {
		products, err = h.catalog.FindByDepartment(r.Context(), department)
	} else {
		products, err = h.catalog.FindAll(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.SearchByName(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleZeroStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FindZeroStock(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.catalog.Departments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, departments)
}

func (h *Handler) handleGetUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.catalog.Units(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

type cartResponse struct {
	Folio int               `json:"folio"`
	State service.State     `json:"state"`
	Lines []entity.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
}

func (h *Handler) cartSnapshot() cartResponse {
	return cartResponse{
		Folio: h.checkout.Folio(),
		State: h.checkout.State(),
		Lines: h.checkout.CartLines(),
		Total: h.checkout.Total(),
	}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

type addItemRequest struct {
	Code     int64 `json:"code"`
	Quantity int   `json:"quantity"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if _, err := h.checkout.ScanProduct(r.Context(), req.Code, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.cartSnapshot())
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseInt(r.PathValue("code"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product code", http.StatusBadRequest)
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.checkout.SetLineQuantity(code, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseInt(r.PathValue("code"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product code", http.StatusBadRequest)
		return
	}

	h.checkout.RemoveLine(code)
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *Handler) handleCharge(w http.ResponseWriter, r *http.Request) {
	if err := h.checkout.Charge(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state": h.checkout.State(),
		"total": h.checkout.Total(),
	})
}

type tenderRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) handleTender(w http.ResponseWriter, r *http.Request) {
	var req tenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	change, err := h.checkout.Tender(r.Context(), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"change":     change,
		"next_folio": h.checkout.Folio(),
	})
}

func (h *Handler) handleHold(w http.ResponseWriter, r *http.Request) {
	if err := h.checkout.Hold(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"next_folio": h.checkout.Folio(),
	})
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	h.checkout.Abandon()
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	folio, err := strconv.Atoi(r.PathValue("folio"))
	if err != nil {
		http.Error(w, "invalid folio", http.StatusBadRequest)
		return
	}

	notes, err := h.checkout.Resume(r.Context(), folio)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":  h.cartSnapshot(),
		"notes": notes,
	})
}

func (h *Handler) handleOpenFolios(w http.ResponseWriter, r *http.Request) {
	folios, err := h.tickets.OpenFolios(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folios)
}

func (h *Handler) handleClosedFolios(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	folios, err := h.tickets.ClosedFoliosOn(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folios)
}

// EnableCORS is a middleware to allow the terminal frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
