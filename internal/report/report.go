// Package report convierte un RunResult en texto, JSON o un script de
// borrado revisable.
package report

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soyunomas/ftools/internal/aggregate"
	"github.com/soyunomas/ftools/internal/entities"
)

// Report es la estructura serializada a JSON.
type Report struct {
	Summary  Summary            `json:"summary"`
	Groups   []GroupResult      `json:"groups"`
	Warnings []entities.Warning `json:"warnings"`
	Actions  *ActionSummary     `json:"actions,omitempty"`
	Metadata Metadata           `json:"metadata"`
}

type Metadata struct {
	ScannedPaths []string  `json:"scanned_paths"`
	Algorithm    string    `json:"algorithm"`
	Strategy     string    `json:"strategy"`
	Timestamp    time.Time `json:"timestamp"`
	Duration     string    `json:"duration_human"`
}

type Summary struct {
	TotalFilesScanned int64  `json:"total_files_scanned"`
	TotalBytesScanned int64  `json:"total_bytes_scanned"`
	TotalGroups       int    `json:"total_groups"`
	TotalDuplicates   int    `json:"total_duplicates"`
	WastedBytes       int64  `json:"wasted_bytes"`
	WastedBytesHuman  string `json:"wasted_bytes_human"`
}

type GroupResult struct {
	Digest  string   `json:"hash"`
	Size    int64    `json:"file_size"`
	Keeper  string   `json:"keeper"`
	Victims []Victim `json:"victims"`
}

type Victim struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ActionSummary describe lo que hizo (o haría) el paso de borrado.
type ActionSummary struct {
	Mode            string `json:"mode"`
	Removed         int    `json:"removed"`
	FreedBytes      int64  `json:"freed_bytes"`
	FreedBytesHuman string `json:"freed_bytes_human"`
}

// Build arma el Report. outcome puede ser nil si no se aplicó ninguna acción.
func Build(result *entities.RunResult, warnings []entities.Warning, strategy string, outcome *aggregate.Outcome) Report {
	rep := Report{
		Metadata: Metadata{
			ScannedPaths: result.Roots,
			Algorithm:    result.Algorithm,
			Strategy:     strategy,
			Timestamp:    time.Now(),
			Duration:     result.Elapsed.String(),
		},
		Summary: Summary{
			TotalFilesScanned: result.FilesScanned,
			TotalBytesScanned: result.BytesScanned,
			TotalGroups:       len(result.Groups),
			TotalDuplicates:   result.DuplicateCount(),
			WastedBytes:       result.WastedBytes,
			WastedBytesHuman:  humanize.IBytes(uint64(result.WastedBytes)), //nolint:gosec // siempre positivo
		},
		Groups:   make([]GroupResult, 0, len(result.Groups)),
		Warnings: append([]entities.Warning{}, warnings...),
	}

	for _, g := range result.Groups {
		gRes := GroupResult{
			Digest: g.Digest,
			Size:   g.Size,
			Keeper: g.Keeper().Path,
		}
		for _, f := range g.Duplicates() {
			gRes.Victims = append(gRes.Victims, Victim{Path: f.Path, Size: f.Size})
		}
		rep.Groups = append(rep.Groups, gRes)
	}

	if outcome != nil {
		rep.Actions = &ActionSummary{
			Mode:            ActionName(outcome.Action),
			Removed:         outcome.Removed,
			FreedBytes:      outcome.FreedBytes,
			FreedBytesHuman: humanize.IBytes(uint64(outcome.FreedBytes)), //nolint:gosec // siempre positivo
		}
		rep.Warnings = append(rep.Warnings, outcome.Warnings...)
	}

	return rep
}

// ActionName es el nombre legible de una acción.
func ActionName(a aggregate.Action) string {
	switch a {
	case aggregate.ActionDelete:
		return "delete"
	case aggregate.ActionTrash:
		return "trash"
	default:
		return "dry-run"
	}
}
