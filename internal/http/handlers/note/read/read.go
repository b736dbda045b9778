// Package read реализует HTTP-обработчик получения конспекта по ID.
//
// Чтение идёт через витринный сервис каталога с кешем и увеличивает
// счётчик просмотров.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/response"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// Handler обрабатывает запросы на получение конспекта по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс витринного чтения конспекта.
type Service interface {
	Read(ctx context.Context, id string) (*models.Note, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить конспект
// @Description Возвращает конспект по ID и увеличивает счётчик просмотров.
// @Tags Notes
// @Produce json
// @Param id path string true "ID конспекта"
// @Success 200 {object} map[string]any "Данные конспекта"
// @Failure 404 {object} response.ErrorResponse "Конспект не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /notes/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.read"

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

	note, err := h.service.Read(r.Context(), noteID)
	if errors.Is(err, models.ErrNotFound) {
		log.Error("note not found", slog.String("note_id", noteID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("note not found"))
		return
	}
	if err != nil {
		log.Error("failed to read note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read note"))
		return
	}

	log.Info("note read", slog.String("note_id", noteID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"note": note,
	}))
}
