package surface

import (
	"fmt"
	"io"
	"os"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func gradeColor(grade string) string {
	if noColor() {
		return ""
	}
	switch grade {
	case "A", "B":
		return colorGreen
	case "C":
		return colorYellow
	case "D", "E":
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func badge(grade string) string {
	return colored("["+grade+"]", gradeColor(grade))
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	info := report.RecipeInfo
	ss := info.SingleScore

	// Header
	fmt.Fprintf(w, "%s\n",
		bold(fmt.Sprintf("FitScore: Grade %s, single score %.4g (scaled %.2f)",
			colored(ss.Grade, gradeColor(ss.Grade)), ss.SingleScore, ss.ScaledValue)))
	line := fmt.Sprintf("Scheme %s, %d items, %s", info.GeneralInfo.WeightingScheme, len(info.Items), info.GeneralInfo.OverallMass)
	if info.GeneralInfo.ContainsProxy {
		line += ", contains proxy data"
	}
	fmt.Fprintf(w, "%s\n\n", dim(line))

	renderValues(w, "Stages:", info.Stages, report.stageOrder)
	renderValues(w, "Impact categories:", info.ImpactCategories, report.catOrder)

	if len(report.ItemResults) > 0 {
		fmt.Fprintln(w, "Items:")
		keys := ordered(report.ItemResults, report.itemOrder)
		width := keyWidth(keys)
		for _, key := range keys {
			item := report.ItemResults[key]
			fmt.Fprintf(w, "  %s %-*s %10s  %.4g (%.2f)",
				badge(item.SingleScore.Grade), width, key, info.Items[key],
				item.SingleScore.SingleScore, item.SingleScore.ScaledValue)
			if p := item.SingleScore.ContainsProxy; p != nil && *p {
				fmt.Fprintf(w, "  %s", colored("proxy", colorYellow))
			}
			if item.ProductName != "" {
				fmt.Fprintf(w, "  %s", dim(item.ProductName))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func renderValues(w io.Writer, title string, values map[string]ValueEntry, order []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	keys := ordered(values, order)
	width := keyWidth(keys)
	for _, name := range keys {
		v := values[name]
		fmt.Fprintf(w, "  %s %-*s %12.4g  %s\n", badge(v.Grade), width, name, v.LCIAValue, dim(fmt.Sprintf("(%.2f)", v.ScaledValue)))
	}
	fmt.Fprintln(w)
}

func keyWidth(keys []string) int {
	n := 0
	for _, k := range keys {
		if len(k) > n {
			n = len(k)
		}
	}
	return n
}
