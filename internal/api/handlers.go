package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/media-library/backend/internal/library"
	"github.com/media-library/backend/internal/metrics"
	"github.com/media-library/backend/internal/models"
	"github.com/media-library/backend/internal/query"
)

// MIMEApplicationMsgpack is negotiated through the Accept header.
const MIMEApplicationMsgpack = "application/msgpack"

// Handler handles API requests. Every listing request rescans the library;
// nothing is cached between requests.
type Handler struct {
	scanner     library.Scanner
	engine      query.Engine
	source      string
	perPage     int
	maxPerPage  int
	scanTimeout time.Duration
	logger      zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps *Dependencies) *Handler {
	perPage := deps.PerPage
	if perPage <= 0 {
		perPage = query.DefaultPerPage
	}
	maxPerPage := deps.MaxPerPage
	if maxPerPage < perPage {
		maxPerPage = perPage
	}
	engine := deps.Engine
	if engine == nil {
		engine = query.NewMemoryEngine()
	}
	source := deps.Source
	if source == "" {
		source = library.SourceLocal
	}
	return &Handler{
		scanner:     deps.Scanner,
		engine:      engine,
		source:      source,
		perPage:     perPage,
		maxPerPage:  maxPerPage,
		scanTimeout: deps.ScanTimeout,
		logger:      deps.Logger.With().Str("component", "media-list").Logger(),
	}
}

// ParseQueryState reads folder, search and page from the query string.
func ParseQueryState(c echo.Context) models.QueryState {
	return models.QueryState{
		Folder: strings.TrimSpace(c.QueryParam("folder")),
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   parsePage(c.QueryParam("page")),
	}
}

// parsePage reads the leading integer of raw, so "2abc" is page 2. No
// digits or a non-positive value give 1; values past the int range
// saturate and are clamped to the last page by the engine.
func parsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	negative := false
	if raw != "" && (raw[0] == '+' || raw[0] == '-') {
		negative = raw[0] == '-'
		raw = raw[1:]
	}
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return 1
	}
	page, err := strconv.Atoi(raw[:end])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// resolvePerPage honours per_page only inside [1, maxPerPage].
func (h *Handler) resolvePerPage(raw string) int {
	if raw == "" {
		return h.perPage
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > h.maxPerPage {
		return h.perPage
	}
	return n
}

// HandleMediaList scans the library and returns one filtered page.
func (h *Handler) HandleMediaList(c echo.Context) error {
	q := ParseQueryState(c)
	perPage := h.resolvePerPage(c.QueryParam("per_page"))

	ctx := c.Request().Context()
	if h.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.scanTimeout)
		defer cancel()
	}

	started := time.Now()
	files, err := h.scanner.Scan(ctx)
	metrics.ObserveScan(h.source, started, len(files), err)
	if err != nil {
		metrics.ListRequestsTotal.WithLabelValues(h.engine.Name(), "scan_error").Inc()
		h.logger.Error().Err(err).Str("source", h.source).Msg("library scan failed")
		return RespondWithError(c, NewScanError(err))
	}

	res, err := h.engine.Query(ctx, files, q, perPage)
	if err != nil {
		metrics.ListRequestsTotal.WithLabelValues(h.engine.Name(), "query_error").Inc()
		h.logger.Error().Err(err).Str("engine", h.engine.Name()).Msg("library query failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return RespondWithError(c, NewServiceUnavailableError("Library query timed out", err))
		}
		return RespondWithError(c, NewInternalError("Failed to query library", err))
	}

	metrics.ListRequestsTotal.WithLabelValues(h.engine.Name(), "ok").Inc()
	h.logger.Debug().
		Str("folder", q.Folder).
		Str("search", q.Search).
		Int("page", res.Page).
		Int("total", res.Total).
		Dur("elapsed", time.Since(started)).
		Msg("listed library")

	return h.respond(c, res)
}

func (h *Handler) respond(c echo.Context, res *models.PageResult) error {
	if !acceptsMsgpack(c.Request().Header.Get(echo.HeaderAccept)) {
		return c.JSON(http.StatusOK, res)
	}
	data, err := msgpack.Marshal(res)
	if err != nil {
		return RespondWithError(c, NewInternalError("failed to encode msgpack", err))
	}
	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}

func acceptsMsgpack(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mime := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if mime == MIMEApplicationMsgpack || mime == "application/x-msgpack" {
			return true
		}
	}
	return false
}
