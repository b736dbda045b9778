// Package approve реализует HTTP-обработчик одобрения конспекта проверяющим.
package approve

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/response"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// Handler управляет HTTP-запросами на одобрение конспектов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики решений проверяющего.
type Service interface {
	Approve(ctx context.Context, reviewerRole, noteID, reviewerUID, comment string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Одобрить конспект
// @Description Публикует конспект, находящийся на проверке. Комментарий необязателен. Доступно ролям reviewer и admin.
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "ID конспекта"
// @Param request body models.DummyDecision false "Комментарий проверяющего"
// @Success 200 {object} map[string]any "Конспект опубликован"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Конспект не найден"
// @Failure 409 {object} response.ErrorResponse "Конспект не находится на проверке"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /notes/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.approve"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	noteID := chi.URLParam(r, "id")
	if noteID == "" {
		log.Error("missing note id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing note id"))
		return
	}

	// Тело с комментарием опционально при одобрении.
	var req models.DummyDecision
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	reviewerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || reviewerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	err := h.service.Approve(r.Context(), role, noteID, reviewerUID, req.Comment)
	switch {
	case errors.Is(err, models.ErrForbidden):
		log.Error("role is not allowed to review", slog.String("role", role))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("review permissions required"))
		return
	case errors.Is(err, models.ErrNotFound):
		log.Error("note not found", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("note not found"))
		return
	case errors.Is(err, models.ErrInvalidTransition):
		log.Error("note is not under review", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("note is not under review"))
		return
	case errors.Is(err, models.ErrUnavailable):
		log.Error("storage unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("service temporarily unavailable"))
		return
	case err != nil:
		log.Error("failed to approve note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not approve note"))
		return
	}

	log.Info("note approved", slog.String("note_id", noteID), slog.String("reviewer_uid", reviewerUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"note_id": noteID,
		"status":  models.StatusPublished,
	}))
}
