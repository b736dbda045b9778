// Package access реализует HTTP-обработчик проверки права на скачивание.
//
// Проверка чистая: ничего не записывает, счётчики и квоты не меняются.
// Отказ — не ошибка, причина возвращается в теле ответа.
package access

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

// Handler обрабатывает запросы на проверку доступа к скачиванию.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс проверки права на скачивание.
type Service interface {
	Check(ctx context.Context, userUID, noteID string) (models.DownloadGrant, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить право на скачивание
// @Description Возвращает решение о доступе к конспекту без побочных эффектов. Отказ содержит причину.
// @Tags Downloads
// @Produce json
// @Param id path string true "ID конспекта"
// @Success 200 {object} map[string]any "Решение о доступе"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Конспект или пользователь не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /notes/{id}/access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.access"

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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	grant, err := h.service.Check(r.Context(), userUID, noteID)
	if errors.Is(err, models.ErrNotFound) {
		log.Error("note or user not found", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("note not found"))
		return
	}
	if err != nil {
		log.Error("failed to check access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check access"))
		return
	}

	log.Info("access checked",
		slog.String("note_id", noteID),
		slog.Bool("allowed", grant.Allowed),
		slog.String("reason", string(grant.Reason)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"grant": grant,
	}))
}
