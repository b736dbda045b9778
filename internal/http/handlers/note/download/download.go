// Package download реализует HTTP-обработчик скачивания конспекта.
//
// Разрешённое скачивание атомарно увеличивает счётчик скачиваний,
// списывает пробную квоту (если применимо) и дописывает запись аудита.
// Отказ возвращается со статусом 403 и причиной в теле ответа.
package download

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

// Handler обрабатывает запросы на скачивание конспекта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики скачивания.
type Service interface {
	Download(ctx context.Context, userUID, noteID string) (models.DownloadGrant, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Скачать конспект
// @Description Проверяет право на скачивание и при разрешении фиксирует его: увеличивает счётчик, списывает пробную квоту и пишет аудит.
// @Tags Downloads
// @Produce json
// @Param id path string true "ID конспекта"
// @Success 200 {object} map[string]any "Скачивание разрешено и зафиксировано"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} map[string]any "Скачивание запрещено, причина в ответе"
// @Failure 404 {object} response.ErrorResponse "Конспект или пользователь не найдены"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /notes/{id}/download [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.download"

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

	grant, err := h.service.Download(r.Context(), userUID, noteID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Error("note or user not found", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("note not found"))
		return
	case errors.Is(err, models.ErrUnavailable):
		log.Error("storage unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("service temporarily unavailable"))
		return
	case err != nil:
		log.Error("failed to download note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not download note"))
		return
	}

	if !grant.Allowed {
		log.Info("download denied",
			slog.String("note_id", noteID),
			slog.String("reason", string(grant.Reason)),
		)
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  string(grant.Reason),
			Data:   map[string]any{"grant": grant},
		})
		return
	}

	log.Info("download recorded", slog.String("note_id", noteID), slog.String("user_uid", userUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"grant": grant,
	}))
}
