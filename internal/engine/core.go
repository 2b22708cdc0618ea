package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soyunomas/ftools/internal/aggregate"
	"github.com/soyunomas/ftools/internal/dispatch"
	"github.com/soyunomas/ftools/internal/entities"
	"github.com/soyunomas/ftools/internal/hasher"
	"github.com/soyunomas/ftools/internal/scanner"
)

// Stage identifica una etapa de hashing del pipeline.
type Stage int

const (
	StagePartial Stage = iota
	StageFull
)

func (s Stage) String() string {
	if s == StagePartial {
		return "partial"
	}
	return "full"
}

// Hooks permite observar los grupos candidatos que recibe cada etapa.
type Hooks struct {
	BeforeStage func(stage Stage, groups [][]entities.FileEntry)
}

type Options struct {
	Scanner      scanner.Config
	Algorithm    hasher.Algorithm
	IncludeEmpty bool
	Strategy     KeepStrategy
	Workers      int
	Progress     *dispatch.Progress
	Logger       *log.Logger
	Hooks        Hooks
}

type Runner struct {
	opts Options
	log  *log.Logger
}

func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Workers <= 0 {
		opts.Workers = dispatch.DefaultWorkers()
	}
	if opts.Progress == nil {
		opts.Progress = &dispatch.Progress{}
	}
	return &Runner{opts: opts, log: logger}
}

// Progress devuelve los contadores compartidos de la ejecución.
func (r *Runner) Progress() *dispatch.Progress {
	return r.opts.Progress
}

// Run ejecuta el pipeline completo sobre las raíces dadas. Los fallos por
// archivo se devuelven como avisos; solo la configuración inválida o la
// cancelación producen error.
func (r *Runner) Run(ctx context.Context, roots ...string) (*entities.RunResult, []entities.Warning, error) {
	start := time.Now()

	absRoots, err := resolveRoots(roots)
	if err != nil {
		return nil, nil, err
	}

	var warnings []entities.Warning
	warn := func(path string, err error) {
		r.opts.Progress.Errors.Add(1)
		r.log.Warn("archivo omitido", "path", path, "err", err)
		warnings = append(warnings, entities.NewWarning(path, err))
	}

	// --- PASO 1: SCANNER ---
	r.log.Debug("fase 1: escaneando sistema de archivos", "roots", absRoots)
	entries, err := r.collect(ctx, absRoots, warn)
	if err != nil {
		return nil, warnings, err
	}

	var totalBytes int64
	for _, e := range entries {
		totalBytes += e.Size
	}

	sizeGroups := r.groupBySize(entries)
	r.log.Debug("agrupado por tamaño", "files", len(entries), "groups", len(sizeGroups))

	if err := ctx.Err(); err != nil {
		return nil, warnings, err
	}

	// --- PASO 2: PRE-HASHING ---
	r.log.Debug("fase 2: pre-hashing", "bytes", hasher.PrefixSize)
	partialGroups := r.partialStage(ctx, sizeGroups, warn)
	r.log.Debug("candidatos tras pre-hash", "groups", len(partialGroups))

	if err := ctx.Err(); err != nil {
		return nil, warnings, err
	}

	// --- PASO 3: FULL HASHING ---
	r.log.Debug("fase 3: hashing completo", "algorithm", r.opts.Algorithm)
	groups := r.fullStage(ctx, partialGroups, warn)

	if err := ctx.Err(); err != nil {
		return nil, warnings, err
	}

	// --- PASO 4: ORDENAR Y FINALIZAR ---
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Members[0].Order < groups[j].Members[0].Order
	})
	sortGroups(groups, r.opts.Strategy)

	result := aggregate.Summarize(groups, int64(len(entries)), totalBytes)
	result.Roots = absRoots
	result.Algorithm = r.opts.Algorithm.String()
	result.Elapsed = time.Since(start)

	r.log.Debug("escaneo terminado",
		"groups", len(result.Groups),
		"wasted", result.WastedBytes,
		"elapsed", result.Elapsed)

	return result, warnings, nil
}

func resolveRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		p, err := filepath.Abs(root)
		if err != nil {
			return nil, &entities.ConfigError{Key: "path", Value: root, Err: err}
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, &entities.ConfigError{Key: "path", Value: root, Err: err}
		}
		if !info.IsDir() {
			return nil, &entities.ConfigError{Key: "path", Value: root, Err: errors.New("no es un directorio")}
		}
		abs = append(abs, p)
	}
	return abs, nil
}

// collect recorre todas las raíces y asigna el orden de descubrimiento. Un
// mismo archivo alcanzado desde dos raíces, o a través de un enlace, solo se
// cuenta una vez.
func (r *Runner) collect(ctx context.Context, roots []string, warn func(string, error)) ([]entities.FileEntry, error) {
	sc := scanner.New(r.opts.Scanner)
	r.log.Debug("scanner", "config", sc.Describe())

	seen := make(map[string]struct{})
	var entries []entities.FileEntry

	for _, root := range roots {
		realRoot, err := filepath.EvalSymlinks(root)
		if err != nil {
			realRoot = root
		}

		for entry, err := range sc.Walk(ctx, root) {
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("escaneo cancelado: %w", ctx.Err())
				}
				path := root
				var te *entities.TraversalError
				if errors.As(err, &te) {
					path = te.Path
				}
				warn(path, err)
				continue
			}

			// Un enlace seguido y su destino son el mismo archivo
			key := identity(root, realRoot, entry)
			if _, dup := seen[key]; dup {
				r.log.Debug("ruta ya vista", "path", entry.Path, "real", key)
				continue
			}
			seen[key] = struct{}{}

			entry.Order = len(entries)
			entries = append(entries, entry)
			r.opts.Progress.FilesDiscovered.Add(1)
			r.opts.Progress.BytesDiscovered.Add(entry.Size)
		}
	}

	return entries, nil
}

// identity devuelve la ruta real de una entrada. Las carpetas nunca se siguen,
// así que para un archivo regular basta con resolver la raíz.
func identity(root, realRoot string, e entities.FileEntry) string {
	if e.Target != "" {
		return e.Target
	}
	rel, err := filepath.Rel(root, e.Path)
	if err != nil {
		return e.Path
	}
	return filepath.Join(realRoot, rel)
}

// groupBySize es la etapa 1. Los grupos de un solo miembro se descartan, y
// los archivos vacíos solo se consideran si IncludeEmpty está activo.
func (r *Runner) groupBySize(entries []entities.FileEntry) [][]entities.FileEntry {
	index := make(map[int64]int)
	var buckets [][]entities.FileEntry

	for _, e := range entries {
		if e.Size == 0 && !r.opts.IncludeEmpty {
			continue
		}
		i, ok := index[e.Size]
		if !ok {
			i = len(buckets)
			index[e.Size] = i
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], e)
	}

	return pruneSingletons(buckets)
}

// partialStage es la etapa 2: reagrupa cada grupo de tamaño por el hash de
// su prefijo.
func (r *Runner) partialStage(ctx context.Context, groups [][]entities.FileEntry, warn func(string, error)) [][]entities.FileEntry {
	buckets, _ := r.hashStage(ctx, StagePartial, groups, warn, func(_ context.Context, path string) (string, error) {
		return hasher.HashPrefix(path)
	})
	return buckets
}

// fullStage es la etapa 3: reagrupa por el digest completo y emite los
// DuplicateGroup definitivos.
func (r *Runner) fullStage(ctx context.Context, groups [][]entities.FileEntry, warn func(string, error)) []entities.DuplicateGroup {
	buckets, digests := r.hashStage(ctx, StageFull, groups, warn, func(ctx context.Context, path string) (string, error) {
		return hasher.HashFile(ctx, path, r.opts.Algorithm)
	})

	out := make([]entities.DuplicateGroup, 0, len(buckets))
	for i, members := range buckets {
		out = append(out, entities.DuplicateGroup{
			Size:      members[0].Size,
			Digest:    digests[i],
			Algorithm: r.opts.Algorithm.String(),
			Members:   members,
		})
	}
	return out
}

// hashStage lanza un único fan-out para todos los miembros de todos los
// grupos y reagrupa dentro de cada grupo de origen. Los resultados se
// reasocian por índice de envío, así el orden de los miembros es el de
// descubrimiento y no el de finalización. Devuelve los sub-grupos con dos o
// más miembros junto con el digest que comparten.
func (r *Runner) hashStage(
	ctx context.Context,
	stage Stage,
	groups [][]entities.FileEntry,
	warn func(string, error),
	fn func(context.Context, string) (string, error),
) ([][]entities.FileEntry, []string) {
	if r.opts.Hooks.BeforeStage != nil {
		r.opts.Hooks.BeforeStage(stage, groups)
	}

	var paths []string
	for _, g := range groups {
		for _, e := range g {
			paths = append(paths, e.Path)
		}
	}
	r.opts.Progress.Candidates.Store(int64(len(paths)))

	counter := &r.opts.Progress.PartialHashed
	if stage == StageFull {
		counter = &r.opts.Progress.FullHashed
	}

	results := dispatch.Run(ctx, r.opts.Workers, paths, func(ctx context.Context, path string) (string, error) {
		digest, err := fn(ctx, path)
		if err == nil {
			counter.Add(1)
		}
		return digest, err
	})

	var (
		out  [][]entities.FileEntry
		keys []string
		next int
	)

	for _, g := range groups {
		index := make(map[string]int)
		var (
			sub     [][]entities.FileEntry
			subKeys []string
		)

		for _, e := range g {
			res := results[next]
			next++

			if res.Err != nil {
				if ctx.Err() == nil {
					warn(e.Path, res.Err)
				}
				continue
			}
			if stage == StageFull {
				r.opts.Progress.BytesHashed.Add(e.Size)
			}

			i, ok := index[res.Value]
			if !ok {
				i = len(sub)
				index[res.Value] = i
				sub = append(sub, nil)
				subKeys = append(subKeys, res.Value)
			}
			sub[i] = append(sub[i], e)
		}

		for i, members := range sub {
			if len(members) < 2 {
				continue
			}
			out = append(out, members)
			keys = append(keys, subKeys[i])
		}
	}

	return out, keys
}

func pruneSingletons(groups [][]entities.FileEntry) [][]entities.FileEntry {
	out := groups[:0]
	for _, g := range groups {
		if len(g) > 1 {
			out = append(out, g)
		}
	}
	return out
}
