package part

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/incidentops/incident-management/internal/transport"
	"github.com/incidentops/incident-management/pkg/logger"
)

type ServiceAPI interface {
	Create(dto CreatePartDTO) (*Part, error)
	Get(id int64) (*Part, error)
	ListActive() ([]Part, error)
	ListLowStock() ([]Part, error)
	AdjustStock(ctx context.Context, id int64, dto AdjustStockDTO) (*Part, error)
	Usage(id int64) (*UsageSummary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListParts handles GET /parts
func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Service.ListActive()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"parts": parts})
}

// ListLowStock handles GET /parts/low-stock
func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Service.ListLowStock()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"parts": parts})
}

// GetPart handles GET /parts/{id}
func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.partID(w, r)
	if !ok {
		return
	}
	p, err := h.Service.Get(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// CreatePart handles POST /parts
func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var dto CreatePartDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.Create(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

// AdjustStock handles POST /parts/{id}/stock
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.partID(w, r)
	if !ok {
		return
	}
	var dto AdjustStockDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.Service.AdjustStock(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// GetUsage handles GET /parts/{id}/usage
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.partID(w, r)
	if !ok {
		return
	}
	usage, err := h.Service.Usage(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, usage)
}

func (h *Handler) partID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid part id")
		return 0, false
	}
	return id, true
}
