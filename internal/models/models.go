package models

import (
	"encoding/base64"
	"html/template"
)

// PageView is everything one page render needs, for HTML and JSON alike.
type PageView struct {
	Page     string      `json:"page"`
	Slug     string      `json:"slug"`
	Title    string      `json:"title"`
	Nav      []NavItem   `json:"nav"`
	Filter   *FilterForm `json:"filter,omitempty"`
	Slider   *YearSlider `json:"slider,omitempty"`
	Sections []Section   `json:"sections"`
}

type NavItem struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

// FilterForm backs the column select and the value multi-select.
type FilterForm struct {
	Columns  []string `json:"columns"`
	Column   string   `json:"column"`
	Options  []Option `json:"options"`
	Selected []string `json:"selected"`
}

type Option struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// YearSlider backs the integer range control.
type YearSlider struct {
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
	Value int64 `json:"value"`
}

type Section struct {
	Heading string          `json:"heading"`
	Caption string          `json:"caption,omitempty"`
	Table   *Table          `json:"table,omitempty"`
	Chart   *Chart          `json:"chart,omitempty"`
	Notes   []template.HTML `json:"notes,omitempty"`
}

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Chart carries the rendered image. PNG is base64 in JSON.
type Chart struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
	PNG   []byte `json:"png"`
}

// DataURI is the image as an inline src attribute.
func (c *Chart) DataURI() template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG))
}

// RowsPage is a paginated slice of the dataset.
type RowsPage struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
}

type ErrorView struct {
	Status  int    `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
