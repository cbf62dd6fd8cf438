package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockcast/internal/domain/dto"
	"github.com/guttosm/stockcast/internal/middleware"
	"github.com/guttosm/stockcast/internal/service"
)

// ModelLister reports which tickers have a cached model.
type ModelLister interface {
	Loaded() []string
}

// Handler provides HTTP handlers for the prediction endpoints.
//
// Responsibilities:
//   - Validate the requested ticker
//   - Call the prediction service with the request context
//   - Translate predictions into response DTOs
type Handler struct {
	svc    service.PredictionService
	models ModelLister
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.PredictionService): prediction use case.
//   - models (ModelLister): source of cached model tickers for GET /api/v1/models.
//
// Returns:
//   - *Handler: ready to be mounted by NewRouter.
func NewHandler(svc service.PredictionService, models ModelLister) *Handler {
	return &Handler{svc: svc, models: models}
}

// PostPredict handles POST /api/v1/predict.
//
// PostPredict godoc
// @Summary      Predict a ticker
// @Description  Returns a 3-day forecast ladder and a BUY/SELL/HOLD recommendation. Always answers with a forecast; degraded results carry source=fallback and a degraded_reason.
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        request  body      dto.PredictRequest   true  "Ticker to predict"
// @Success      200      {object}  dto.PredictResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse    "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse    "Internal Error"
// @Router       /api/v1/predict [post]
func (h *Handler) PostPredict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.predict(c, req.Ticker)
}

// GetPredict handles GET /api/v1/predict/:ticker.
//
// GetPredict godoc
// @Summary      Predict a ticker
// @Description  Same as POST /api/v1/predict with the ticker taken from the path
// @Tags         predict
// @Produce      json
// @Param        ticker  path      string               true  "Stock ticker" example(AAPL)
// @Success      200     {object}  dto.PredictResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse    "Bad Request"
// @Failure      500     {object}  dto.ErrorResponse    "Internal Error"
// @Router       /api/v1/predict/{ticker} [get]
func (h *Handler) GetPredict(c *gin.Context) {
	h.predict(c, c.Param("ticker"))
}

func (h *Handler) predict(c *gin.Context, raw string) {
	ticker := service.NormalizeTicker(raw)
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}

	p, err := h.svc.Predict(c.Request.Context(), ticker)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "prediction failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPredictResponse(p))
}

// ListModels handles GET /api/v1/models.
//
// ListModels godoc
// @Summary      List cached models
// @Description  Tickers whose model (trained or placeholder) is cached in the registry
// @Tags         predict
// @Produce      json
// @Success      200  {object}  dto.ModelsResponse
// @Router       /api/v1/models [get]
func (h *Handler) ListModels(c *gin.Context) {
	tickers := h.models.Loaded()
	if tickers == nil {
		tickers = []string{}
	}
	c.JSON(http.StatusOK, dto.ModelsResponse{Count: len(tickers), Tickers: tickers})
}
