package dashboard

import (
	"fmt"

	"socialtrends/internal/engine"
	"socialtrends/internal/render"
)

// columns pulls several numeric columns at once, keyed by name.
func columns(ds *engine.Dataset, names ...string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(names))
	for _, n := range names {
		v, err := ds.Floats(n)
		if err != nil {
			return nil, err
		}
		out[n] = v
	}
	return out, nil
}

func visualizationCharts(ds *engine.Dataset) ([]pageChart, error) {
	col, err := columns(ds, engine.ColYear, engine.ColTwitter, engine.ColFacebook, engine.ColSuicideRate)
	if err != nil {
		return nil, err
	}
	years := col[engine.ColYear]
	fbMean, err := ds.Mean(engine.ColFacebook)
	if err != nil {
		return nil, err
	}

	return []pageChart{
		{
			heading: "Twitter Growth vs Suicide Rate Change",
			chart: render.Chart{
				Kind:       render.Scatter,
				Title:      "Twitter Growth vs Suicide Rate Change",
				XLabel:     "Twitter Growth (% Change Since 2010)",
				YLabel:     "Suicide Rate (% Change Since 2010)",
				ColorLabel: "Year",
				Grid:       true,
				Width:      12,
				Height:     6,
				Series: []render.Series{{
					X:        col[engine.ColTwitter],
					Y:        col[engine.ColSuicideRate],
					C:        years,
					Colormap: "coolwarm",
					Marker:   render.Circle,
					Size:     100,
					Alpha:    0.8,
				}},
			},
			notes: []string{noteTwitterScatter},
		},
		{
			heading: "Facebook Growth vs Suicide Rate Change",
			chart: render.Chart{
				Kind:       render.Scatter,
				Title:      "Facebook Growth vs Suicide Rate Change",
				XLabel:     "Facebook Growth (% Change Since 2010)",
				YLabel:     "Suicide Rate (% Change Since 2010)",
				ColorLabel: "Year",
				Grid:       true,
				Width:      12,
				Height:     6,
				Series: []render.Series{{
					X:        col[engine.ColFacebook],
					Y:        col[engine.ColSuicideRate],
					C:        years,
					Colormap: "magma",
					Marker:   render.Square,
					Size:     150,
					Alpha:    0.85,
				}},
			},
			notes: []string{noteFacebookScatter},
		},
		{
			heading: "Twitter User Growth Over the Years",
			chart: render.Chart{
				Kind:   render.Line,
				Title:  "Twitter User Growth Over the Years",
				XLabel: "Year",
				YLabel: "Percentage",
				Grid:   true,
				Width:  10,
				Height: 6,
				Series: []render.Series{{
					Label: "Twitter User Growth (%)",
					X:     years,
					Y:     col[engine.ColTwitter],
					Color: "purple",
				}},
			},
			notes: []string{noteTwitterLine, hypoTwitterLine},
		},
		{
			heading: "Facebook User Growth Over the Years",
			chart: render.Chart{
				Kind:   render.Bar,
				Title:  "Facebook User Growth Percentage Change Since 2010",
				XLabel: "Year",
				YLabel: "Percentage Change",
				Grid:   true,
				Width:  10,
				Height: 6,
				Series: []render.Series{{
					Label: "Facebook User Growth (%)",
					X:     years,
					Y:     col[engine.ColFacebook],
					Color: "orange",
					Alpha: 0.8,
				}},
				HLines: []render.Reference{{
					Label: fmt.Sprintf("Mean Growth: %.2f", fbMean),
					Y:     fbMean,
					Color: "blue",
				}},
			},
			notes: []string{noteFacebookBar, hypoFacebookBar},
		},
	}, nil
}

func analysisCharts(ds *engine.Dataset) ([]pageChart, error) {
	col, err := columns(ds, engine.ColYear, engine.ColTwitter, engine.ColFacebook, engine.ColTotalGrowth, engine.ColImpactScore)
	if err != nil {
		return nil, err
	}
	years := col[engine.ColYear]

	return []pageChart{
		{
			heading: "Combined Social Media Trends Over the Years",
			chart: render.Chart{
				Kind:    render.DualAxis,
				Title:   "Combined Social Media Trends Over the Years",
				XLabel:  "Year",
				YLabel:  "Total Growth (Score)",
				Y2Label: "Impact Score",
				Grid:    true,
				Width:   12,
				Height:  6,
				Series: []render.Series{
					{Label: "Total Growth", X: years, Y: col[engine.ColTotalGrowth], Color: "green"},
					{Label: "Impact Score", X: years, Y: col[engine.ColImpactScore], Color: "blue", Secondary: true},
				},
			},
			notes: []string{noteCombined, hypoCombined},
		},
		{
			heading: "Facebook vs. Twitter User Growth",
			chart: render.Chart{
				Kind:   render.Line,
				Title:  "Facebook vs. Twitter User Growth Over the Years",
				XLabel: "Year",
				YLabel: "Percentage",
				Grid:   true,
				Width:  10,
				Height: 6,
				Series: []render.Series{
					{Label: "Twitter User Growth (%)", X: years, Y: col[engine.ColTwitter], Color: "purple"},
					{Label: "Facebook User Growth (%)", X: years, Y: col[engine.ColFacebook], Color: "orange"},
				},
			},
			notes: []string{hypoComparison},
		},
	}, nil
}

func fancyCharts(ds *engine.Dataset) ([]pageChart, error) {
	col, err := columns(ds, engine.ColYear, engine.ColTwitter, engine.ColFacebook, engine.ColSuicideRate)
	if err != nil {
		return nil, err
	}
	years := col[engine.ColYear]

	return []pageChart{{
		chart: render.Chart{
			Kind:       render.Scatter,
			Title:      "Social Media and Suicide Rates",
			XLabel:     "Social Media User Growth (%)",
			YLabel:     "Suicide Rate (%)",
			ColorLabel: "Year",
			Grid:       true,
			Width:      12,
			Height:     6,
			Series: []render.Series{
				{
					Label: "Twitter User Growth", X: col[engine.ColTwitter], Y: col[engine.ColSuicideRate],
					C: years, Colormap: "viridis", Marker: render.Circle, Size: 150, Alpha: 0.8,
				},
				{
					Label: "Facebook User Growth", X: col[engine.ColFacebook], Y: col[engine.ColSuicideRate],
					C: years, Colormap: "viridis", Marker: render.Square, Size: 150, Alpha: 0.85,
				},
			},
		},
		notes: []string{noteConclusion},
	}}, nil
}
