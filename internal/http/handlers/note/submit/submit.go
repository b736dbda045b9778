// Package submit реализует HTTP-обработчик отправки конспекта на проверку.
//
// Переход разрешён только из статуса draft или rejected и только автору
// конспекта; конфликт статуса возвращается как 409 Conflict.
package submit

import (
	"context"
	"errors"
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

// Handler управляет HTTP-запросами на отправку конспекта на проверку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отправки на проверку.
type Service interface {
	Submit(ctx context.Context, noteID, authorUID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отправить конспект на проверку
// @Description Переводит конспект из статуса draft или rejected в submitted. Доступно только автору.
// @Tags Notes
// @Produce json
// @Param id path string true "ID конспекта"
// @Success 200 {object} map[string]any "Конспект отправлен на проверку"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Конспект принадлежит другому автору"
// @Failure 404 {object} response.ErrorResponse "Конспект не найден"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /notes/{id}/submit [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.submit"
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

	authorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || authorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.Submit(r.Context(), noteID, authorUID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Error("note not found", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("note not found"))
		return
	case errors.Is(err, models.ErrForbidden):
		log.Error("note belongs to another author", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("note belongs to another author"))
		return
	case errors.Is(err, models.ErrInvalidTransition):
		log.Error("invalid status transition", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("note is not in a submittable status"))
		return
	case errors.Is(err, models.ErrUnavailable):
		log.Error("storage unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("service temporarily unavailable"))
		return
	case err != nil:
		log.Error("failed to submit note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit note"))
		return
	}

	log.Info("note submitted", slog.String("note_id", noteID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"note_id": noteID,
		"status":  models.StatusSubmitted,
	}))
}
