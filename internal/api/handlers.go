package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"csvdash/internal/chart"
	"csvdash/internal/engine"
	"csvdash/internal/log"
	"csvdash/internal/models"
	"csvdash/internal/session"

	"github.com/labstack/echo/v4"
)

// Options are the request defaults taken from configuration.
type Options struct {
	TopGroupColumn string
	TopValueColumn string
	TopN           int
	ChartWidth     int
	ChartHeight    int

	// DataDir confines POST /api/load; empty disables the route.
	DataDir string
}

type Handler struct {
	session *session.Session
	opts    Options
	logger  *log.Logger
}

func NewHandler(s *session.Session, opts Options, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Discard()
	}
	return &Handler{session: s, opts: opts, logger: logger.WithComponent(log.ComponentHTTP)}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/state", h.GetState)
	api.POST("/load", h.PostLoad)
	api.GET("/catalog", h.GetCatalog)
	api.GET("/domain/:column", h.GetDomain)
	api.PUT("/selection", h.PutSelection)
	api.GET("/series", h.GetSeries)
	api.GET("/series/chart.png", h.GetSeriesChart)
	api.GET("/series/export", h.GetSeriesExport)
	api.GET("/summary", h.GetSummary)
	api.GET("/top", h.GetTop)
	api.GET("/top/chart.png", h.GetTopChart)
}

// --- HELPERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// fail maps domain errors to responses. Empty catalogs and domains are not
// failures; they come back as 200 with a notice.
func (h *Handler) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case engine.IsNotice(err), errors.Is(err, chart.ErrNoPoints):
		return c.JSON(http.StatusOK, map[string]string{"notice": err.Error()})
	case errors.Is(err, session.ErrNoData):
		status = http.StatusServiceUnavailable
	case errors.Is(err, session.ErrInvalidSelection):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrLoad):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrColumnNotFound):
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// --- HANDLERS ---

func (h *Handler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.Snapshot())
}

type loadRequest struct {
	Path string `json:"path"`
}

func (h *Handler) PostLoad(c echo.Context) error {
	var req loadRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "path is required"})
	}
	path, err := resolveDataPath(h.opts.DataDir, req.Path)
	if err != nil {
		h.logger.Warn("load refused", "path", req.Path, "error", err)
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	}
	if err := h.session.Load(path); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *Handler) GetCatalog(c echo.Context) error {
	snap := h.session.Snapshot()
	if !snap.Loaded {
		return h.fail(c, session.ErrNoData)
	}
	return c.JSON(http.StatusOK, snap.Catalog)
}

func (h *Handler) GetDomain(c echo.Context) error {
	values, err := h.session.Domain(c.Param("column"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, values)
}

func (h *Handler) PutSelection(c echo.Context) error {
	var sel session.Selection
	if err := c.Bind(&sel); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid selection body"})
	}
	if err := h.session.Apply(sel); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.session.Snapshot().Selection)
}

func (h *Handler) GetSeries(c echo.Context) error {
	series, err := h.session.Series()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *Handler) GetSeriesChart(c echo.Context) error {
	series, err := h.session.Series()
	if err != nil {
		return h.fail(c, err)
	}
	var buf bytes.Buffer
	err = chart.Line(&buf, chart.LineSpec{
		Title:  series.Title,
		XLabel: series.XLabel,
		YLabel: series.YLabel,
		Points: series.Points,
		Width:  h.opts.ChartWidth,
		Height: h.opts.ChartHeight,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// GetSeriesExport downloads the current series as ?format=csv (default) or parquet.
func (h *Handler) GetSeriesExport(c echo.Context) error {
	write, name, contentType := engine.WriteSeriesCSV, "series.csv", "text/csv"
	switch c.QueryParam("format") {
	case "", "csv":
	case "parquet":
		write, name, contentType = engine.WriteSeriesParquet, "series.parquet", "application/vnd.apache.parquet"
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "format must be csv or parquet"})
	}

	series, err := h.session.Series()
	if err != nil {
		return h.fail(c, err)
	}
	var buf bytes.Buffer
	if err := write(&buf, series.Points, series.YLabel); err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) GetSummary(c echo.Context) error {
	summary, err := h.session.Summary()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) topItems(c echo.Context) (items []models.TopItem, total, limit, offset int, err error) {
	group := c.QueryParam("group")
	if group == "" {
		group = h.opts.TopGroupColumn
	}
	value := c.QueryParam("value")
	if value == "" {
		value = h.opts.TopValueColumn
	}
	all, err := h.session.Top(group, value, 0)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	limit, offset = getPaginationParams(c, h.opts.TopN)
	return page(all, limit, offset), len(all), limit, offset, nil
}

// returns the largest group totals, TopN by default
func (h *Handler) GetTop(c echo.Context) error {
	items, total, limit, offset, err := h.topItems(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetTopChart(c echo.Context) error {
	items, _, _, _, err := h.topItems(c)
	if err != nil {
		return h.fail(c, err)
	}
	var buf bytes.Buffer
	err = chart.Bar(&buf, chart.BarSpec{
		Title:  "Top " + strconv.Itoa(len(items)) + " by " + valueOr(c.QueryParam("value"), h.opts.TopValueColumn),
		XLabel: "Category",
		YLabel: "Value",
		Items:  items,
		Width:  h.opts.ChartWidth,
		Height: h.opts.ChartHeight,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
