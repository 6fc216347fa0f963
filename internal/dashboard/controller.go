// Package dashboard builds the four dashboard pages. Each call to Handle is
// one interaction: the shared dataset is read, the page's derived view is
// computed from the request parameters, and every chart is rendered.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialtrends/internal/engine"
	"socialtrends/internal/models"
	"socialtrends/internal/render"
)

// DatasetSource hands out the shared, read-only dataset.
type DatasetSource interface {
	Load() (*engine.Dataset, error)
}

// Request carries all per-interaction state explicitly.
type Request struct {
	Page    Page
	Column  string
	Values  []string
	MinYear *int64
}

type Controller struct {
	source   DatasetSource
	renderer render.Renderer
	log      *zap.Logger
}

func NewController(source DatasetSource, renderer render.Renderer, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{source: source, renderer: renderer, log: log}
}

// Handle renders one page. Any load or render failure fails the whole page.
func (c *Controller) Handle(ctx context.Context, req Request) (*models.PageView, error) {
	ds, err := c.source.Load()
	if err != nil {
		return nil, err
	}

	view := &models.PageView{
		Page: string(req.Page),
		Slug: req.Page.Slug(),
		Nav:  nav(req.Page),
	}

	switch req.Page {
	case Overview:
		err = c.overview(ds, req, view)
	case Visualizations:
		err = c.visualizations(ctx, ds, view)
	case Analysis:
		err = c.analysis(ctx, ds, req, view)
	case FancyGraph:
		err = c.fancyGraph(ctx, ds, view)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownPage, req.Page)
	}
	if err != nil {
		c.log.Debug("page failed", zap.String("page", string(req.Page)), zap.Error(err))
		return nil, err
	}
	return view, nil
}

func (c *Controller) overview(ds *engine.Dataset, req Request, view *models.PageView) error {
	view.Title = "Dataset Overview"

	columns := ds.Columns()
	column := req.Column
	if column == "" {
		column = columns[0]
	}
	unique, err := ds.Unique(column)
	if err != nil {
		return err
	}
	filtered, err := ds.Filter(column, req.Values)
	if err != nil {
		return err
	}

	canonical, err := ds.Canonical(column, req.Values)
	if err != nil {
		return err
	}
	selected := make(map[string]bool, len(canonical))
	for _, v := range canonical {
		selected[v] = true
	}
	options := make([]models.Option, len(unique))
	for i, v := range unique {
		options[i] = models.Option{Value: v, Selected: selected[v]}
	}
	view.Filter = &models.FilterForm{
		Columns:  columns,
		Column:   column,
		Options:  options,
		Selected: canonical,
	}

	caption := "Original Dataset:"
	if len(req.Values) > 0 {
		caption = "Filtered Dataset:"
	}
	view.Sections = append(view.Sections,
		models.Section{Heading: "Filter Dataset", Caption: caption, Table: datasetTable(filtered)},
		// Statistics always describe the full dataset, not the filtered view.
		models.Section{Heading: "Summary Statistics", Table: summaryTable(engine.Describe(ds))},
	)
	return nil
}

func (c *Controller) visualizations(ctx context.Context, ds *engine.Dataset, view *models.PageView) error {
	view.Title = "Data Visualizations"

	charts, err := visualizationCharts(ds)
	if err != nil {
		return err
	}
	return c.addCharts(ctx, view, charts)
}

func (c *Controller) analysis(ctx context.Context, ds *engine.Dataset, req Request, view *models.PageView) error {
	view.Title = "Data Analysis"

	lo, hi, err := ds.YearRange()
	if err != nil {
		return err
	}
	threshold := lo
	if req.MinYear != nil {
		if threshold, err = ds.ClampYear(*req.MinYear); err != nil {
			return err
		}
	}
	view.Slider = &models.YearSlider{Min: lo, Max: hi, Value: threshold}

	sub, err := ds.FilterByMinYear(threshold)
	if err != nil {
		return err
	}
	charts, err := analysisCharts(sub)
	if err != nil {
		return err
	}
	return c.addCharts(ctx, view, charts)
}

func (c *Controller) fancyGraph(ctx context.Context, ds *engine.Dataset, view *models.PageView) error {
	view.Title = "Fancy Graph: Social Media and Suicide Rates"

	charts, err := fancyCharts(ds)
	if err != nil {
		return err
	}
	return c.addCharts(ctx, view, charts)
}

// pageChart is a chart plus the text shown around it.
type pageChart struct {
	heading string
	chart   render.Chart
	notes   []string
}

// addCharts renders a page's charts concurrently, one worker per chart, and
// appends them in page order. Any failure fails the page.
func (c *Controller) addCharts(ctx context.Context, view *models.PageView, charts []pageChart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	images := make([][]byte, len(charts))
	g, gctx := errgroup.WithContext(ctx)
	for i := range charts {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := c.renderer.Render(charts[i].chart)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, pc := range charts {
		sec := models.Section{
			Heading: pc.heading,
			Chart:   &models.Chart{Title: pc.chart.Title, Kind: pc.chart.Kind.String(), PNG: images[i]},
		}
		for _, n := range pc.notes {
			sec.Notes = append(sec.Notes, note(n))
		}
		view.Sections = append(view.Sections, sec)
	}
	return nil
}

func datasetTable(ds *engine.Dataset) *models.Table {
	t := &models.Table{Columns: ds.Columns(), Rows: make([][]string, ds.NumRows())}
	for i := range t.Rows {
		t.Rows[i] = ds.Row(i)
	}
	return t
}

// summaryTable lays out a describe result with stats as rows and columns as
// columns.
func summaryTable(s engine.Summary) *models.Table {
	t := &models.Table{Columns: []string{""}}
	for _, cs := range s {
		t.Columns = append(t.Columns, cs.Column)
	}
	for i, name := range engine.StatNames {
		row := []string{name}
		for _, cs := range s {
			row = append(row, formatStat(cs.Stats.Values()[i]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatStat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}
