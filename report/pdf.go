package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/seo-optimizer/pageaudit/analyzer"
)

// MaxKeywords is how many keywords the report lists
const MaxKeywords = 10

// Render writes a PDF report of result to w. Sub-scores are printed as a
// percentage of their category weight.
func Render(w io.Writer, result *analyzer.Result, rules analyzer.ScoringRules, now time.Time) error {
	if result == nil {
		return fmt.Errorf("nothing to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SEO Analysis Report", true)
	pdf.SetCreator("pageaudit", true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "SEO Analysis Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, now.Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	heading := func(text string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	line := func(format string, args ...any) {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf(format, args...)), "", "L", false)
	}

	heading("Analyzed URL")
	line("%s", result.URL)

	heading("Page Information")
	line("Title: %s", result.Title)
	line("Description: %s", result.Description)
	line("Pages linked (estimate): %d", result.PageCount)
	if result.Niche != "" {
		line("Niche: %s", result.Niche)
	}

	heading("SEO Score")
	d := result.SeoScore.Details
	line("Overall score: %d / 100", result.SeoScore.Score)
	line("Title: %d%%", percent(d.Title, rules.TitleLength.Weight))
	line("Description: %d%%", percent(d.Description, rules.DescriptionLength.Weight))
	line("Keywords: %d%%", percent(d.Keywords, rules.KeywordCount.Weight))
	line("Internal links: %d%%", percent(d.InternalLinks, rules.InternalLinks.Weight))
	line("External links: %d%%", percent(d.ExternalLinks, rules.ExternalLinks.Weight))
	if result.Explanation != "" {
		line("%s", result.Explanation)
	}

	heading("Top Keywords")
	keywords := result.Keywords
	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}
	if len(keywords) == 0 {
		line("No keywords found.")
	}
	for _, kw := range keywords {
		line("%s: %d occurrences", kw.Text, kw.Count)
	}

	heading("Link Analysis")
	internal, external := result.LinkCounts()
	line("Internal links: %d", internal)
	line("External links: %d", external)

	if len(result.Suggestions) > 0 {
		heading("Suggested Improvements")
		for _, s := range analyzer.SortByPriority(result.Suggestions) {
			line("- [%s] %s", s.Priority, s.Text)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func percent(v, weight float64) int {
	if weight <= 0 {
		return 0
	}
	return int(math.Round(v / weight * 100))
}
