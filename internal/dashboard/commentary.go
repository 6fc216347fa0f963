package dashboard

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Page commentary, authored as Markdown.
const (
	noteTwitterScatter = "As seen in the graph, the growth of Twitter users correlates with slight changes in suicide rates. " +
		"This suggests that the growth of social media platforms might influence mental health trends."
	noteFacebookScatter = "The relationship between Facebook user growth and suicide rates highlights a steady trend. " +
		"This could be due to Facebook's broader user base and potential for both positive and negative mental health impacts."
	noteTwitterLine = "**Comments:** The number of Twitter users skyrocketed in 2010 until 2014 and gradually increased with slight fluctuations later."
	hypoTwitterLine = "**Hypothesis:** Twitter's initial growth was driven by widespread adoption of social media platforms during this period. " +
		"Fluctuations may reflect market saturation or competition."
	noteFacebookBar = "**Comments:** The graph shows a moderate increase during the whole period."
	hypoFacebookBar = "**Hypothesis:** Facebook's steady growth suggests market saturation and competition from other platforms, limiting sharper growth."
	noteCombined    = "**Comments:** The graph shows two trends: a consistent increase in the total social media growth and a much steeper rise in the social media impact score over the years."
	hypoCombined    = "**Hypothesis:** The total social media growth reflects the increasing user base, while the sharp rise in impact score indicates the intensifying influence of social media on society during this period."
	hypoComparison  = "**Hypothesis:** Twitter likely attracted users with its unique format and real-time interaction appeal but faced challenges maintaining growth. " +
		"Facebook's global reach and feature integration contributed to its steady growth."
	noteConclusion = "**Conclusion:** The growth of social media platforms, with Twitter experiencing rapid growth and Facebook showing steady growth, correlates with changes in suicide rates. " +
		"This highlights both positive and negative mental health influences."
)

var (
	notesOnce sync.Once
	notes     map[string]template.HTML
)

// note returns the rendered HTML for one commentary string. All notes are
// converted on first use and reused for the process lifetime.
func note(src string) template.HTML {
	notesOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		notes = make(map[string]template.HTML)
		for _, s := range []string{
			noteTwitterScatter, noteFacebookScatter, noteTwitterLine, hypoTwitterLine,
			noteFacebookBar, hypoFacebookBar, noteCombined, hypoCombined,
			hypoComparison, noteConclusion,
		} {
			notes[s] = markdown(policy, s)
		}
	})
	if h, ok := notes[src]; ok {
		return h
	}
	return markdown(bluemonday.UGCPolicy(), src)
}

func markdown(policy *bluemonday.Policy, src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}
