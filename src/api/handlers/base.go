package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tradesim/src/repositories"
	"tradesim/src/services"
	"tradesim/src/utils"
)

type Handler struct {
	UserService      services.UserServiceI
	TradeService     services.TradeServiceI
	PortfolioService services.PortfolioServiceI
	MarketService    services.MarketServiceI
}

func NewHandler(
	userService services.UserServiceI,
	tradeService services.TradeServiceI,
	portfolioService services.PortfolioServiceI,
	marketService services.MarketServiceI,
) *Handler {
	return &Handler{
		UserService:      userService,
		TradeService:     tradeService,
		PortfolioService: portfolioService,
		MarketService:    marketService,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func decodeBody(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return utils.BadRequest("invalid request body")
	}
	return nil
}

func userIDFromURL(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, utils.BadRequest("invalid user id")
	}
	return uint(id), nil
}

// writeServiceError translates typed service errors into HTTP responses. The
// core returns typed results; user-visible messaging happens here.
func writeServiceError(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	if errors.As(err, &httpErr) {
		utils.WriteError(w, httpErr)
		return
	}

	var fundsErr *services.InsufficientFundsError
	var sharesErr *services.InsufficientSharesError

	switch {
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrInvalidRegistration):
		utils.WriteError(w, utils.BadRequest(err.Error()))
	case errors.Is(err, services.ErrUnknownAsset),
		errors.Is(err, repositories.ErrAssetNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		utils.WriteError(w, utils.NotFound(err.Error()))
	case errors.As(err, &fundsErr), errors.As(err, &sharesErr),
		errors.Is(err, repositories.ErrEmailTaken),
		errors.Is(err, repositories.ErrConflict):
		utils.WriteError(w, utils.Conflict(err.Error()))
	case errors.Is(err, services.ErrPriceUnavailable):
		utils.WriteError(w, utils.ServiceUnavailable(err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.WriteError(w, utils.Unauthorized(err.Error()))
	default:
		utils.WriteError(w, utils.InternalServerError("Internal Server Error"))
	}
}

func Healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
