package reviewhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

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
	r.Route("/reviews", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleListReviews)
		r.With(middleware.RequireAction(auth.ActionCreateReview, h.Gate)).Post("/", h.handleOpenReview)
		r.Get("/{reviewID}", h.handleGetReview)
		r.Put("/{reviewID}/draft", h.handleSaveDraft)
		r.Get("/{reviewID}/draft", h.handleLoadDraft)
		r.Delete("/{reviewID}/draft", h.handleDiscardDraft)
		r.Post("/{reviewID}/submit", h.handleSubmit)
		r.Post("/{reviewID}/acknowledge", h.handleAcknowledge)
		r.With(middleware.RequireAction(auth.ActionExportData, h.Gate)).Post("/{reviewID}/export", h.handleExport)
	})
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	query := r.URL.Query()

	reviews, err := h.Service.ListReviews(r.Context(), actorFrom(user), review.ReviewFilter{
		CycleID:    query.Get("cycleId"),
		EmployeeID: query.Get("employeeId"),
		ReviewerID: query.Get("reviewerId"),
	})
	if err != nil {
		failDomain(w, r, err, "review_list_failed", "failed to list reviews")
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOpenReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		CycleID    string `json:"cycleId"`
		EmployeeID string `json:"employeeId"`
		ReviewerID string `json:"reviewerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.ReviewerID == "" {
		payload.ReviewerID = user.UserID
	}
	v := shared.NewValidator()
	v.Required("cycleId", payload.CycleID, "cycle id is required")
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	rev, err := h.Service.OpenReview(r.Context(), actorFrom(user), payload.CycleID, payload.EmployeeID, payload.ReviewerID)
	if err != nil {
		failDomain(w, r, err, "review_open_failed", "failed to open review")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "review.open", "review", rev.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, rev); err != nil {
		slog.Warn("audit review.open failed", "err", err)
	}
	api.Created(w, rev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	rev, err := h.Service.GetReview(r.Context(), actorFrom(user), chi.URLParam(r, "reviewID"))
	if err != nil {
		failDomain(w, r, err, "review_get_failed", "failed to load review")
		return
	}
	api.Success(w, rev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Ratings  []review.RatingEntry `json:"ratings"`
		Feedback string               `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	rev, err := h.Service.SaveDraft(r.Context(), actorFrom(user), chi.URLParam(r, "reviewID"), payload.Ratings, payload.Feedback)
	if err != nil {
		failDomain(w, r, err, "draft_save_failed", "failed to save draft")
		return
	}
	api.Success(w, rev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLoadDraft(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	draft, found, err := h.Service.LoadDraft(r.Context(), actorFrom(user), chi.URLParam(r, "reviewID"))
	if err != nil {
		failDomain(w, r, err, "draft_load_failed", "failed to load draft")
		return
	}
	if !found {
		api.Fail(w, http.StatusNotFound, "draft_not_found", "no draft for this review", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, draft, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	if err := h.Service.DiscardDraft(r.Context(), actorFrom(user), reviewID); err != nil {
		failDomain(w, r, err, "draft_discard_failed", "failed to discard draft")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "review.draft.discard", "review", reviewID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit review.draft.discard failed", "err", err)
	}
	api.Success(w, map[string]any{"discarded": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	rev, issues, err := h.Service.Submit(r.Context(), actorFrom(user), reviewID)
	if err != nil {
		failDomain(w, r, err, "review_submit_failed", "failed to submit review")
		return
	}
	if len(issues) > 0 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), issues)
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "review.submit", "review", rev.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, rev); err != nil {
		slog.Warn("audit review.submit failed", "err", err)
	}
	api.Success(w, rev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	rev, err := h.Service.Acknowledge(r.Context(), actorFrom(user), reviewID)
	if err != nil {
		failDomain(w, r, err, "review_acknowledge_failed", "failed to acknowledge review")
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "review.acknowledge", "review", rev.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, nil); err != nil {
		slog.Warn("audit review.acknowledge failed", "err", err)
	}
	api.Success(w, rev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	// The export joins users and cycles directly; re-check visibility through
	// the service first so the export path cannot widen access.
	if _, err := h.Service.GetReview(r.Context(), actorFrom(user), reviewID); err != nil {
		failDomain(w, r, err, "review_export_failed", "failed to export review")
		return
	}

	filePath, err := h.Reports.GenerateReviewPDF(r.Context(), reviewID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_export_failed", "failed to export review", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "review.export", "review", reviewID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]string{"file": filePath}); err != nil {
		slog.Warn("audit review.export failed", "err", err)
	}
	api.Success(w, map[string]any{"file": filePath}, middleware.GetRequestID(r.Context()))
}

func actorFrom(user auth.UserContext) review.Actor {
	return review.Actor{UserID: user.UserID, Role: user.Role}
}

func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMessage string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, review.ErrPermissionDenied):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, review.ErrReviewNotFound):
		api.Fail(w, http.StatusNotFound, "review_not_found", "review not found", requestID)
	case errors.Is(err, review.ErrCycleNotFound):
		api.Fail(w, http.StatusNotFound, "cycle_not_found", "review cycle not found", requestID)
	case errors.Is(err, review.ErrCycleNotActive):
		api.Fail(w, http.StatusConflict, "cycle_not_active", "review cycle is not active", requestID)
	case errors.Is(err, review.ErrReviewExists):
		api.Fail(w, http.StatusConflict, "review_exists", "review already exists for this cycle and subject", requestID)
	case errors.Is(err, review.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "review status does not allow this transition", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}
