package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/processing"
	"github.com/systemstart/many-scaffold/pkg/steps"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#44C25B"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25F5C")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Faint(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Italic(true)
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
)

var statusLabels = map[processing.Status]string{
	processing.StatusSuccess: successStyle.Render("ok  "),
	processing.StatusSkipped: skippedStyle.Render("skip"),
	processing.StatusFailed:  failedStyle.Render("FAIL"),
}

func printSummary(w io.Writer, r *processing.Report, withDiff bool) {
	title := fmt.Sprintf("%s -> %s", r.Recipe, r.Target)
	if r.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, headerStyle.Render(title))

	width := 0
	for _, o := range r.Outcomes {
		width = max(width, len(o.Name))
	}

	for _, o := range r.Outcomes {
		line := fmt.Sprintf("  %s %-*s  %s", statusLabels[o.Status], width, o.Name, o.Action)
		if o.Message != "" {
			msg := o.Message
			if o.Status == processing.StatusFailed {
				msg = failedStyle.Render(msg)
			} else {
				msg = noteStyle.Render(msg)
			}
			line += "  " + msg
		}
		fmt.Fprintln(w, line)

		if o.Status == processing.StatusFailed && o.Output != "" {
			fmt.Fprintln(w, indent(strings.TrimRight(o.Output, "\n"), "      "))
		}
		if withDiff && o.Diff != "" {
			fmt.Fprintln(w, indent(colorizeDiff(strings.TrimRight(o.Diff, "\n")), "      "))
		}
	}

	counts := r.Counts()
	fmt.Fprintf(w, "%s, %s, %s in %s\n",
		successStyle.Render(fmt.Sprintf("%d succeeded", counts[processing.StatusSuccess])),
		skippedStyle.Render(fmt.Sprintf("%d skipped", counts[processing.StatusSkipped])),
		failedStyle.Render(fmt.Sprintf("%d failed", counts[processing.StatusFailed])),
		r.Duration.Round(time.Millisecond))
}

func printPlan(w io.Writer, recipe *steps.Recipe) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s: %d steps", recipe.Name(), recipe.Len())))
	for i, s := range recipe.All() {
		line := fmt.Sprintf("  %2d. %s  %s", i+1, s.Name(), noteStyle.Render(s.Describe()))
		if t := s.Timeout(); t > 0 {
			line += fmt.Sprintf(" (timeout %s)", t)
		}
		fmt.Fprintln(w, line)
	}
}

func printRecipes(w io.Writer, recipes []*api.Recipe) {
	for _, r := range recipes {
		name := r.Name
		if name == "" {
			name = filepath.Base(r.Dir)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", headerStyle.Render(name), noteStyle.Render(r.FilePath), r.Description)
	}
}

func colorizeDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			lines[i] = noteStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = successStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = failedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
