package api

import (
	"time"

	domrepo "SigPull/internal/domain/repository"
	"SigPull/internal/parser"
	"SigPull/internal/usecase"
	xhttp "SigPull/pkg/http"
	xlogger "SigPull/pkg/logger"
	"SigPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// ParseEchoHandler exposes on-demand parsing and signal queries over HTTP.
type ParseEchoHandler struct {
	logger    *xlogger.Logger
	parser    *parser.Parser
	store     domrepo.SignalStore
	processor *usecase.SignalProcessor
	metrics   domrepo.Metrics
}

func NewParseEchoHandler(logger *xlogger.Logger, p *parser.Parser, store domrepo.SignalStore, processor *usecase.SignalProcessor, metrics domrepo.Metrics) *ParseEchoHandler {
	return &ParseEchoHandler{logger: logger, parser: p, store: store, processor: processor, metrics: metrics}
}

func (h *ParseEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/parse", h.Parse)
	g.GET("/signals", h.Signals)
	e.GET("/healthz", h.Health)
}

// ParseRequest is the on-demand parse body. Persist opts the result into
// the signal store and downstream topic, same as intake traffic.
type ParseRequest struct {
	Text      string `json:"text" validate:"required"`
	Channel   string `json:"channel" validate:"required"`
	MessageID string `json:"message_id"`
	Persist   bool   `json:"persist"`
}

type ParseResponse struct {
	Signal interface{} `json:"signal"`
	Parsed bool        `json:"parsed"`
}

func (h *ParseEchoHandler) Parse(c echo.Context) error {
	start := time.Now()
	req := &ParseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	sig := h.parser.ParseSignal(ctx, req.Text, req.Channel)
	h.metrics.RecordLatency("api_parse", time.Since(start).Seconds())

	if sig == nil {
		return xhttp.SuccessResponse(c, ParseResponse{Parsed: false})
	}
	if req.Persist {
		if req.MessageID == "" {
			return xhttp.BadRequestResponse(c, "message_id required when persist is set")
		}
		if err := h.processor.Process(ctx, req.MessageID, sig); err != nil {
			h.logger.Error("persist parsed signal", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
	}
	return xhttp.SuccessResponse(c, ParseResponse{Signal: sig, Parsed: true})
}

type SignalsRequest struct {
	Channel string `query:"channel" validate:"required"`
	Since   string `query:"since"`
	Limit   int    `query:"limit" default:"50" validate:"gte=0,lte=1000"`
}

func (h *ParseEchoHandler) Signals(c echo.Context) error {
	req := &SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	since := util.ParseTimeDefault(req.Since, time.Time{})
	signals, err := h.store.Recent(c.Request().Context(), req.Channel, since, req.Limit)
	if err != nil {
		h.logger.Error("recent signals", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

func (h *ParseEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("signal store unavailable"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
