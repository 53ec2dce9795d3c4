package engineer

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/incidentops/incident-management/internal/transport"
	"github.com/incidentops/incident-management/pkg/logger"
)

type ServiceAPI interface {
	Get(id int64) (*Engineer, error)
	List() ([]Engineer, error)
	ListOnCall() ([]Engineer, error)
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

// ListEngineers handles GET /engineers
func (h *Handler) ListEngineers(w http.ResponseWriter, r *http.Request) {
	var (
		engineers []Engineer
		err       error
	)
	if r.URL.Query().Get("on_call") == "true" {
		engineers, err = h.Service.ListOnCall()
	} else {
		engineers, err = h.Service.List()
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"engineers": engineers})
}

// GetEngineer handles GET /engineers/{id}
func (h *Handler) GetEngineer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid engineer id")
		return
	}
	e, svcErr := h.Service.Get(id)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}
