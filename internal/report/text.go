package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/soyunomas/ftools/internal/aggregate"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dupeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	wastedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func ibytes(n int64) string {
	return humanize.IBytes(uint64(n)) //nolint:gosec // tamaños siempre positivos
}

// WriteText imprime el reporte legible. outcome, si no es nil, indica qué
// se hizo con cada candidato.
//
//nolint:forbidigo // Salida a consola
func WriteText(r Report, outcome *aggregate.Outcome, w io.Writer) error {
	fmt.Fprintln(w, headerStyle.Render("DUPLICATE FILES REPORT"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-18s %d (%s)\n", "Files scanned", r.Summary.TotalFilesScanned, ibytes(r.Summary.TotalBytesScanned))
	fmt.Fprintf(w, "  %-18s %d\n", "Duplicate groups", r.Summary.TotalGroups)
	fmt.Fprintf(w, "  %-18s %d\n", "Total duplicates", r.Summary.TotalDuplicates)
	fmt.Fprintf(w, "  %-18s %s\n", "Wasted space", wastedStyle.Render(r.Summary.WastedBytesHuman))

	if len(r.Groups) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, keepStyle.Render("  No duplicate files found"))
	}

	status := removalStatus(outcome)

	for _, g := range r.Groups {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  • %d files, %s each\n", len(g.Victims)+1, dimStyle.Render(ibytes(g.Size)))
		fmt.Fprintf(w, "    %s %s\n", dimStyle.Render("hash:"), dimStyle.Render(short(g.Digest)))
		fmt.Fprintf(w, "    ├ [%s] %s\n", keepStyle.Render("keep"), g.Keeper)
		for _, v := range g.Victims {
			label := status[v.Path]
			if label == "" {
				label = "dupe"
			}
			fmt.Fprintf(w, "    ├ [%s] %s\n", dupeStyle.Render(label), v.Path)
		}
	}

	if r.Actions != nil && outcome != nil && outcome.Action != aggregate.ActionNone {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s: %d files, %s freed\n",
			r.Actions.Mode, r.Actions.Removed, r.Actions.FreedBytesHuman)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("WARNINGS (%d)", len(r.Warnings))))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [%s] %s\n", warn.Kind, warn.Message)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("Elapsed:"), r.Metadata.Duration)
	return nil
}

func removalStatus(outcome *aggregate.Outcome) map[string]string {
	status := make(map[string]string)
	if outcome == nil || outcome.Action == aggregate.ActionNone {
		return status
	}
	for _, rm := range outcome.Removals {
		switch {
		case rm.Err != nil:
			status[rm.Path] = "failed"
		case outcome.Action == aggregate.ActionTrash:
			status[rm.Path] = "trashed"
		default:
			status[rm.Path] = "deleted"
		}
	}
	return status
}

func short(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
