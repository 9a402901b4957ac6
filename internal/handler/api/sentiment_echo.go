package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	models "EdgeFinder/internal/domain/models"
	domrepo "EdgeFinder/internal/domain/repository"
	"EdgeFinder/internal/handler/web"
	svcmetrics "EdgeFinder/internal/service/metrics"
	"EdgeFinder/internal/service/ratelimit"
	"EdgeFinder/internal/usecase"
	xhttp "EdgeFinder/pkg/http"
	xlogger "EdgeFinder/pkg/logger"
	"EdgeFinder/pkg/util"
)

var (
	registerOnce sync.Once
	registerErr  error
)

func registerValidations() error {
	registerOnce.Do(func() {
		if err := xhttp.RegisterValidation("timeframe", "ERR_UNKNOWN_TIMEFRAME",
			"%s must be one of: M1, M5, M15, 1H, 4H, Daily",
			func(fl validator.FieldLevel) bool {
				return models.IsValidTimeframe(models.Timeframe(fl.Field().String()))
			}); err != nil {
			registerErr = fmt.Errorf("register timeframe rule: %w", err)
			return
		}
		if err := xhttp.RegisterValidation("evaldate", "ERR_INVALID_DATE",
			"%s must be YYYY-MM-DD, RFC3339 or unix seconds",
			func(fl validator.FieldLevel) bool {
				_, ok := util.ParseTime(fl.Field().String())
				return ok
			}); err != nil {
			registerErr = fmt.Errorf("register evaldate rule: %w", err)
		}
	})
	return registerErr
}

// SentimentEchoHandler serves the dashboard, its JSON API and the live websocket feed.
type SentimentEchoHandler struct {
	logger   *xlogger.Logger
	eval     *usecase.SentimentEvaluator
	weights  domrepo.WeightTable
	assets   domrepo.AssetUniverse
	page     *template.Template
	upgrader websocket.Upgrader

	limiter      *ratelimit.Limiter
	capacity     float64
	refillPerSec float64
}

type HandlerOption func(*SentimentEchoHandler)

// WithRateLimit enables a token bucket per client address on every route but /health.
func WithRateLimit(l *ratelimit.Limiter, capacity, refillPerSec float64) HandlerOption {
	return func(h *SentimentEchoHandler) {
		h.limiter = l
		h.capacity = capacity
		h.refillPerSec = refillPerSec
	}
}

func NewSentimentEchoHandler(logger *xlogger.Logger, eval *usecase.SentimentEvaluator, weights domrepo.WeightTable, assets domrepo.AssetUniverse, opts ...HandlerOption) (*SentimentEchoHandler, error) {
	if err := registerValidations(); err != nil {
		return nil, err
	}
	svcmetrics.Register()

	h := &SentimentEchoHandler{
		logger:  logger,
		eval:    eval,
		weights: weights,
		assets:  assets,
		page:    web.Templates(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *SentimentEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/", h.Dashboard, h.rateLimit)
	e.GET("/ws/sentiment", h.Live, h.rateLimit)

	g := e.Group("/api", h.rateLimit)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/score", h.Score)
	g.GET("/timeframes", h.Timeframes)
	g.GET("/weights", h.Weights)
	g.GET("/assets", h.Assets)
}

func (h *SentimentEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":     "ok",
		"assets":     len(h.assets.Symbols()),
		"timeframes": len(h.weights.Presets()),
	})
}

// Sentiment evaluates the full table for one set of inputs.
func (h *SentimentEchoHandler) Sentiment(c echo.Context) error {
	start := time.Now()
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues("sentiment", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	ev, err := h.evaluate(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "sentiment", err)
	}
	svcmetrics.APILatency.WithLabelValues("sentiment").Observe(time.Since(start).Seconds())
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, ev)
}

// Score evaluates a single symbol of the asset list.
func (h *SentimentEchoHandler) Score(c echo.Context) error {
	start := time.Now()
	req := &models.ScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues("score", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	date, _ := util.ParseTime(req.Date)
	res, err := h.eval.ScoreSymbol(c.Request().Context(), req.Symbol, models.Timeframe(req.TF), req.Inputs(), date)
	if err != nil {
		return h.fail(c, "score", err)
	}
	svcmetrics.APILatency.WithLabelValues("score").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

type timeframeInfo struct {
	Timeframe models.Timeframe    `json:"timeframe"`
	Weights   models.WeightTriple `json:"weights"`
	Caption   string              `json:"caption"`
}

// Timeframes lists the weight presets in display order.
func (h *SentimentEchoHandler) Timeframes(c echo.Context) error {
	presets := h.weights.Presets()
	out := make([]timeframeInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, timeframeInfo{Timeframe: p.Timeframe, Weights: p.Weights, Caption: usecase.Caption(p.Timeframe, p.Weights)})
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *SentimentEchoHandler) Weights(c echo.Context) error {
	req := &models.WeightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues("weights", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := models.Timeframe(req.TF)
	w, err := h.weights.WeightsFor(tf)
	if err != nil {
		return h.fail(c, "weights", err)
	}
	return xhttp.SuccessResponse(c, timeframeInfo{Timeframe: tf, Weights: w, Caption: usecase.Caption(tf, w)})
}

func (h *SentimentEchoHandler) Assets(c echo.Context) error {
	symbols := h.assets.Symbols()
	return xhttp.ListResponse(c, symbols, int64(len(symbols)))
}

// Dashboard renders the HTML page. Every slider change resubmits the form or,
// when scripts run, goes over the live websocket instead.
func (h *SentimentEchoHandler) Dashboard(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues("dashboard", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	ev, err := h.evaluate(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "dashboard", err)
	}

	var buf bytes.Buffer
	if err := h.page.ExecuteTemplate(&buf, "dashboard", newDashboardView(ev, req, h.weights.Presets())); err != nil {
		h.logger.Error("dashboard render failed", xlogger.Error(err))
		svcmetrics.APIErrors.WithLabelValues("dashboard", "render").Inc()
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *SentimentEchoHandler) evaluate(ctx context.Context, req *models.SentimentRequest) (*models.Evaluation, error) {
	date, _ := util.ParseTime(req.Date)
	return h.eval.Evaluate(ctx, usecase.EvaluateParams{
		Timeframe: models.Timeframe(req.TF),
		Inputs:    req.Inputs(),
		Date:      date,
		SortBy:    req.Sort,
		Order:     req.Order,
	})
}

func (h *SentimentEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	svcmetrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("sentiment usecase error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrUnknownTimeframe):
		return xhttp.BadRequestErrorf("ERR_UNKNOWN_TIMEFRAME", "tf", "%v", err).
			WithParam("allowed", models.Timeframes()).
			WithError(err)
	case errors.Is(err, models.ErrUnknownSymbol):
		return xhttp.NotFoundErrorf("ERR_UNKNOWN_SYMBOL", "symbol", "%v", err).WithError(err)
	default:
		return xhttp.InternalError("evaluation failed").WithError(err)
	}
}

func (h *SentimentEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter == nil {
			return next(c)
		}
		if !h.limiter.Allow(c.RealIP(), h.capacity, h.refillPerSec) {
			svcmetrics.RateLimited.Inc()
			c.Response().Header().Set("Retry-After", "1")
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
		}
		return next(c)
	}
}
