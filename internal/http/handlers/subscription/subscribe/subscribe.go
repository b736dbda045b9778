// Package subscribe реализует HTTP-обработчик оформления premium-подписки.
//
// Handler списывает оплату через платёжный шлюз и после успешного платежа
// активирует premium-доступ до даты окончания плана.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/response"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
	"github.com/magabrotheeeer/notes-marketplace/internal/paymentprovider"
)

// Handler обрабатывает запросы на оформление premium-подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	payments Payments
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики активации premium-доступа.
type Service interface {
	Subscribe(ctx context.Context, userUID, plan string, expiresAt time.Time) error
}

// Payments описывает клиент платёжного шлюза.
type Payments interface {
	Charge(req paymentprovider.ChargeRequest) (*paymentprovider.ChargeResponse, error)
}

// New создает новый Handler с переданными логгером, сервисом и платёжным клиентом.
func New(log *slog.Logger, service Service, payments Payments) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		payments: payments,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить premium-подписку
// @Description Списывает оплату по платёжному токену и активирует premium-доступ до окончания плана.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body models.DummySubscribe true "План и платёжный токен"
// @Success 200 {object} map[string]any "Подписка активирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Платёж отклонён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.subscribe"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscribe
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("plan", req.Plan))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	amount, ok := paymentprovider.PlanAmount(req.Plan)
	if !ok {
		log.Error("unknown plan", slog.String("plan", req.Plan))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	}

	chargeResp, err := h.payments.Charge(paymentprovider.ChargeRequest{
		PaymentToken: req.PaymentToken,
		Plan:         req.Plan,
		Amount:       amount,
		Currency:     "RUB",
		UserUID:      userUID,
	})
	if err != nil || !chargeResp.Success {
		log.Error("payment failed", sl.Err(err))
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("payment was declined"))
		return
	}

	expiresAt := paymentprovider.PlanExpiry(req.Plan, chargeResp.PaidAt.UTC())
	err = h.service.Subscribe(r.Context(), userUID, req.Plan, expiresAt)
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Error("user not found", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, models.ErrUnavailable):
		log.Error("storage unavailable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("service temporarily unavailable"))
		return
	case err != nil:
		log.Error("failed to activate subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate subscription"))
		return
	}

	log.Info("subscription activated",
		slog.String("user_uid", userUID),
		slog.String("plan", req.Plan),
		slog.Time("expires_at", expiresAt),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tier":       models.TierPremium,
		"plan":       req.Plan,
		"expires_at": expiresAt,
	}))
}
