package cyclehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pms/internal/domain/audit"
	"pms/internal/domain/auth"
	"pms/internal/domain/reports"
	"pms/internal/domain/review"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Handler struct {
	Service *review.Service
	Reports *reports.Service
	Gate    *auth.Gate
	Audit   *audit.Service
}

func NewHandler(service *review.Service, reportsSvc *reports.Service, gate *auth.Gate, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Reports: reportsSvc, Gate: gate, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.handleListCycles)
		r.With(middleware.RequireUser).Get("/{cycleID}", h.handleGetCycle)
		r.With(middleware.RequireAction(auth.ActionManageCycle, h.Gate)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequireAction(auth.ActionManageCycle, h.Gate)).Post("/{cycleID}/activate", h.handleActivateCycle)
		r.With(middleware.RequireAction(auth.ActionManageCycle, h.Gate)).Post("/{cycleID}/complete", h.handleCompleteCycle)
		r.With(middleware.RequireAction(auth.ActionViewTeam, h.Gate)).Get("/{cycleID}/summary", h.handleCycleSummary)
	})
}

type parameterPayload struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Weight          float64 `json:"weight"`
	RequiresComment bool    `json:"requiresComment"`
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.Service.ListCycles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list review cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Service.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		if errors.Is(err, review.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "review cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_get_failed", "failed to load review cycle", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name       string             `json:"name"`
		StartDate  string             `json:"startDate"`
		EndDate    string             `json:"endDate"`
		ScaleMin   int                `json:"scaleMin"`
		ScaleMax   int                `json:"scaleMax"`
		Parameters []parameterPayload `json:"parameters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	params := make([]review.Parameter, 0, len(payload.Parameters))
	for _, p := range payload.Parameters {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = uuid.NewString()
		}
		params = append(params, review.Parameter{
			ID:              id,
			Name:            p.Name,
			Weight:          p.Weight,
			RequiresComment: p.RequiresComment,
		})
	}

	cycle, issues, err := h.Service.CreateCycle(r.Context(), actorFrom(user), review.CycleDraft{
		Name:       payload.Name,
		StartDate:  startDate,
		EndDate:    endDate,
		ScaleMin:   payload.ScaleMin,
		ScaleMax:   payload.ScaleMax,
		Parameters: params,
	})
	if err != nil {
		failDomain(w, r, err, "cycle_create_failed", "failed to create review cycle")
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycle.create", "review_cycle", cycle.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, cycle); err != nil {
		slog.Warn("audit cycle.create failed", "err", err)
	}
	api.Created(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivateCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	issues, err := h.Service.ActivateCycle(r.Context(), actorFrom(user), cycleID)
	if err != nil {
		failDomain(w, r, err, "cycle_activate_failed", "failed to activate review cycle")
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycle.activate", "review_cycle", cycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit cycle.activate failed", "err", err)
	}
	api.Success(w, map[string]any{"id": cycleID, "status": review.CycleStatusActive}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	if err := h.Service.CompleteCycle(r.Context(), actorFrom(user), cycleID); err != nil {
		failDomain(w, r, err, "cycle_complete_failed", "failed to complete review cycle")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycle.complete", "review_cycle", cycleID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit cycle.complete failed", "err", err)
	}
	api.Success(w, map[string]any{"id": cycleID, "status": review.CycleStatusCompleted}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCycleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.CycleSummary(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_summary_failed", "failed to build cycle summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func actorFrom(user auth.UserContext) review.Actor {
	return review.Actor{UserID: user.UserID, Role: user.Role}
}

func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMessage string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, review.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, review.ErrCycleNotFound):
		api.Fail(w, http.StatusNotFound, "cycle_not_found", "review cycle not found", requestID)
	case errors.Is(err, review.ErrCycleImmutable):
		api.Fail(w, http.StatusConflict, "cycle_immutable", "cycle is already active", requestID)
	case errors.Is(err, review.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "cycle status does not allow this transition", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}
