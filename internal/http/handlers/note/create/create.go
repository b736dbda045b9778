// Package create реализует HTTP-обработчик создания черновика конспекта.
//
// Handler принимает JSON-запрос с данными конспекта, валидирует их,
// извлекает UID автора из контекста, вызывает бизнес-логику создания
// черновика и возвращает ID созданной записи в JSON-формате.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/response"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// Handler управляет HTTP-запросами на создание черновиков конспектов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики жизненного цикла
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания черновика.
type Service interface {
	CreateDraft(ctx context.Context, authorUID string, req models.DummyNote) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать черновик конспекта
// @Description Создает новый черновик конспекта от имени текущего пользователя. Возвращает ID созданной записи.
// @Tags Notes
// @Accept json
// @Produce json
// @Param request body models.DummyNote true "Данные нового конспекта"
// @Success 200 {object} map[string]any "Черновик создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /notes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.note.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyNote
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	authorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || authorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.CreateDraft(r.Context(), authorUID, req)
	if err != nil {
		log.Error("failed to create note draft", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create note"))
		return
	}

	log.Info("note draft created", slog.String("note_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"note_id": id,
	}))
}
