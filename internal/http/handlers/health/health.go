// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/response"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
)

// Readiness описывает проверку готовности хранилища.
type Readiness interface {
	CheckDatabaseReady(ctx context.Context) error
}

// Handler отвечает на запросы проверки готовности.
type Handler struct {
	log *slog.Logger
	db  Readiness
}

// New создает новый Handler.
func New(log *slog.Logger, db Readiness) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Description Проверяет доступность базы данных.
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.db.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
