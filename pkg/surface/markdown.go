package surface

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownRenderer renders a Report as a Markdown summary, for pasting into
// tickets and pull requests.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, BuildMarkdownSummary(report))
	return err
}

// BuildMarkdownSummary formats the recipe-level results and a per-item
// table.
func BuildMarkdownSummary(report *Report) string {
	var sb strings.Builder
	info := report.RecipeInfo

	sb.WriteString(fmt.Sprintf("## FitScore: Grade %s, single score %.4g\n\n", info.SingleScore.Grade, info.SingleScore.SingleScore))
	sb.WriteString(fmt.Sprintf("Weighting scheme `%s`, overall mass %s", info.GeneralInfo.WeightingScheme, info.GeneralInfo.OverallMass))
	if info.GeneralInfo.ContainsProxy {
		sb.WriteString(" :warning: contains proxy data")
	}
	sb.WriteString("\n\n")

	writeTable(&sb, "Stages", info.Stages, report.stageOrder)
	writeTable(&sb, "Impact Categories", info.ImpactCategories, report.catOrder)

	if len(report.ItemResults) > 0 {
		sb.WriteString("### Items\n\n")
		sb.WriteString("| Item | Amount | Single score | Scaled | Grade | Proxy |\n|------|--------|--------------|--------|-------|-------|\n")
		for _, key := range ordered(report.ItemResults, report.itemOrder) {
			it := report.ItemResults[key]
			proxy := ""
			if p := it.SingleScore.ContainsProxy; p != nil && *p {
				proxy = "yes"
			}
			label := key
			if it.ProductName != "" {
				label += " " + it.ProductName
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4g | %.2f | %s | %s |\n",
				label, info.Items[key], it.SingleScore.SingleScore, it.SingleScore.ScaledValue, it.SingleScore.Grade, proxy))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeTable(sb *strings.Builder, title string, values map[string]ValueEntry, order []string) {
	if len(values) == 0 {
		return
	}
	sb.WriteString("### " + title + "\n\n")
	sb.WriteString("| Name | Value | Scaled | Grade |\n|------|-------|--------|-------|\n")
	for _, name := range ordered(values, order) {
		v := values[name]
		sb.WriteString(fmt.Sprintf("| %s | %.4g | %.2f | %s |\n", name, v.LCIAValue, v.ScaledValue, v.Grade))
	}
	sb.WriteString("\n")
}
