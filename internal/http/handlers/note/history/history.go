// Package history реализует HTTP-обработчик получения истории отклонений конспекта.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/response"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// Handler обрабатывает запросы на получение истории отклонений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения истории отклонений.
type Service interface {
	History(ctx context.Context, noteID string) ([]*models.RejectionRecord, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История отклонений конспекта
// @Description Возвращает все отклонения конспекта в порядке добавления, включая комментарии проверяющих.
// @Tags Review
// @Produce json
// @Param id path string true "ID конспекта"
// @Success 200 {object} map[string]any "История отклонений"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /notes/{id}/rejections [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.history"

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

	records, err := h.service.History(r.Context(), noteID)
	if err != nil {
		log.Error("failed to list rejections", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list rejections"))
		return
	}

	log.Info("rejections listed", slog.String("note_id", noteID), slog.Int("count", len(records)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"rejections": records,
	}))
}
