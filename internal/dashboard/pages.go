package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"socialtrends/internal/models"
)

// Page is one of the fixed sidebar entries.
type Page string

const (
	Overview       Page = "Overview"
	Visualizations Page = "Visualizations"
	Analysis       Page = "Analysis"
	FancyGraph     Page = "Fancy Graph"
)

// Pages is the sidebar order.
var Pages = []Page{Overview, Visualizations, Analysis, FancyGraph}

var ErrUnknownPage = errors.New("unknown page")

// Slug is the URL form: "Fancy Graph" -> "fancy-graph".
func (p Page) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(p)), " ", "-")
}

// ParsePage accepts a page name or its slug, ignoring case.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Slug()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, s)
}

func nav(active Page) []models.NavItem {
	items := make([]models.NavItem, len(Pages))
	for i, p := range Pages {
		items[i] = models.NavItem{Name: string(p), Slug: p.Slug(), Active: p == active}
	}
	return items
}
