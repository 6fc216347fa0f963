package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"socialtrends/internal/dashboard"
	"socialtrends/internal/engine"
	"socialtrends/internal/models"
	"socialtrends/internal/render"
)

// Source is the shared dataset as the handlers see it.
type Source interface {
	Load() (*engine.Dataset, error)
	Ready() bool
}

type Handler struct {
	pages  *dashboard.Controller
	source Source
	log    *zap.Logger
}

func NewHandler(pages *dashboard.Controller, source Source, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{pages: pages, source: source, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Renderer = NewTemplates()

	e.GET("/", h.Index)
	e.GET("/pages/:page", h.GetPage)
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/pages/:page", h.GetPageJSON)
	api.GET("/dataset", h.GetDataset)
	api.GET("/summary", h.GetSummary)
	api.GET("/columns", h.GetColumns)
	api.GET("/columns/values", h.GetColumnValues)
}

var errBadParam = errors.New("bad parameter")

// --- HANDLERS ---
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

// pageRequest turns query parameters into one controller interaction.
func pageRequest(c echo.Context) (dashboard.Request, error) {
	page, err := dashboard.ParsePage(c.Param("page"))
	if err != nil {
		return dashboard.Request{}, err
	}
	req := dashboard.Request{
		Page:   page,
		Column: c.QueryParam("column"),
		Values: c.QueryParams()["value"],
	}
	if raw := c.QueryParam("min_year"); raw != "" {
		y, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, fmt.Errorf("%w: min_year %q", errBadParam, raw)
		}
		req.MinYear = &y
	}
	return req, nil
}

func (h *Handler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/pages/"+dashboard.Overview.Slug())
}

// GetPage renders a full HTML page. Failures replace the whole page.
func (h *Handler) GetPage(c echo.Context) error {
	req, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err, true)
	}
	view, err := h.pages.Handle(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, true)
	}
	return c.Render(http.StatusOK, "page", view)
}

func (h *Handler) GetPageJSON(c echo.Context) error {
	req, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err, false)
	}
	view, err := h.pages.Handle(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, false)
	}
	return c.JSON(http.StatusOK, view)
}

// GetDataset returns the (optionally filtered) rows, paginated.
func (h *Handler) GetDataset(c echo.Context) error {
	ds, err := h.source.Load()
	if err != nil {
		return h.fail(c, err, false)
	}
	column, values := c.QueryParam("column"), c.QueryParams()["value"]
	if column == "" && len(values) > 0 {
		return h.fail(c, fmt.Errorf("%w: value given without column", errBadParam), false)
	}
	if column != "" {
		if ds, err = ds.Filter(column, values); err != nil {
			return h.fail(c, err, false)
		}
	}

	total := ds.NumRows()
	limit, offset := getPaginationParams(c, total)
	page := models.RowsPage{Columns: ds.Columns(), Rows: [][]string{}, Total: total, Limit: limit, Offset: offset}
	if offset >= total {
		return c.JSON(http.StatusOK, page)
	}

	end := offset + limit
	if end > total {
		end = total
	}
	for i := offset; i < end; i++ {
		page.Rows = append(page.Rows, ds.Row(i))
	}
	return c.JSON(http.StatusOK, page)
}

// GetSummary returns describe() of the full dataset.
func (h *Handler) GetSummary(c echo.Context) error {
	ds, err := h.source.Load()
	if err != nil {
		return h.fail(c, err, false)
	}
	return c.JSON(http.StatusOK, engine.Describe(ds))
}

func (h *Handler) GetColumns(c echo.Context) error {
	ds, err := h.source.Load()
	if err != nil {
		return h.fail(c, err, false)
	}
	type column struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	out := make([]column, 0)
	for _, name := range ds.Columns() {
		k, _ := ds.Kind(name)
		out = append(out, column{Name: name, Kind: k.String()})
	}
	return c.JSON(http.StatusOK, out)
}

// GetColumnValues lists the distinct values of ?column= for the filter UI.
func (h *Handler) GetColumnValues(c echo.Context) error {
	ds, err := h.source.Load()
	if err != nil {
		return h.fail(c, err, false)
	}
	vals, err := ds.Unique(c.QueryParam("column"))
	if err != nil {
		return h.fail(c, err, false)
	}
	return c.JSON(http.StatusOK, vals)
}

// Health is 503 until the background load finishes.
func (h *Handler) Health(c echo.Context) error {
	if !h.source.Ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	ds, err := h.source.Load()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "rows": ds.NumRows()})
}

func classify(err error) (int, string) {
	var le *engine.LoadError
	var re *render.RenderError
	switch {
	case errors.As(err, &le):
		return http.StatusInternalServerError, "load_error"
	case errors.As(err, &re):
		return http.StatusInternalServerError, "render_error"
	case errors.Is(err, dashboard.ErrUnknownPage):
		return http.StatusNotFound, "unknown_page"
	case errors.Is(err, engine.ErrUnknownColumn), errors.Is(err, errBadParam):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) fail(c echo.Context, err error, html bool) error {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.String("kind", kind), zap.Error(err))
	}
	view := models.ErrorView{Status: status, Kind: kind, Message: err.Error()}
	if html {
		return c.Render(status, "error", view)
	}
	return c.JSON(status, view)
}
