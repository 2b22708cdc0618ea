package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/soyunomas/ftools/internal/entities"
)

// DefaultExcludes son las carpetas ignoradas si no se configura otra cosa.
var DefaultExcludes = []string{
	"node_modules", ".git", ".svn", ".hg", "__pycache__", ".cache",
	"target", ".idea", ".vscode", "vendor", "dist", "build",
	"TRASH_BIN",
}

// Config define las reglas para el escaneo.
type Config struct {
	Extensions     []string // Extensiones permitidas (vacío = todas)
	Excludes       []string // Nombres de carpeta a ignorar
	MinSize        int64    // Tamaño mínimo en bytes para considerar
	IncludeHidden  bool     // Incluir archivos y carpetas que empiezan por '.'
	FollowSymlinks bool     // Tratar enlaces a archivos regulares como archivos
	Parallel       bool     // Recorrido paralelo con fastwalk
}

// FileScanner encapsula la lógica de recorrido del sistema de archivos.
type FileScanner struct {
	cfg        Config
	excludeMap map[string]struct{} // Optimización O(1)
	extMap     map[string]struct{}
}

// New crea una nueva instancia del escáner con configuración.
func New(cfg Config) *FileScanner {
	exMap := make(map[string]struct{}, len(cfg.Excludes))
	for _, e := range cfg.Excludes {
		exMap[e] = struct{}{}
	}

	extMap := make(map[string]struct{}, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		extMap[normalizeExt(e)] = struct{}{}
	}

	return &FileScanner{
		cfg:        cfg,
		excludeMap: exMap,
		extMap:     extMap,
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ValidateExtensions rechaza filtros vacíos o que contienen separadores.
func ValidateExtensions(exts []string) error {
	for _, e := range exts {
		n := normalizeExt(e)
		if n == "" || strings.ContainsAny(n, `/\*?`) || strings.HasPrefix(n, ".") {
			return &entities.ConfigError{
				Key:   "extension",
				Value: e,
				Err:   errors.New("se espera una extensión como 'jpg' o '.jpg'"),
			}
		}
	}
	return nil
}

// Walk recorre root y produce cada archivo regular como FileEntry, en orden
// léxico por componentes. Los fallos de acceso se entregan como
// *entities.TraversalError en la posición de error y el recorrido continúa.
//
// Cada llamada reinicia el recorrido. Salir del range detiene el walk.
func (s *FileScanner) Walk(ctx context.Context, root string) iter.Seq2[entities.FileEntry, error] {
	if s.cfg.Parallel {
		return s.walkParallel(ctx, root)
	}
	return s.walkSequential(ctx, root)
}

func (s *FileScanner) walkSequential(ctx context.Context, root string) iter.Seq2[entities.FileEntry, error] {
	return func(yield func(entities.FileEntry, error) bool) {
		stopped := false

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return fs.SkipAll
			}

			entry, ok, werr := s.visit(root, path, d, err)
			if werr != nil && !errors.Is(werr, filepath.SkipDir) {
				if !yield(entities.FileEntry{}, werr) {
					stopped = true
					return fs.SkipAll
				}
				return nil
			}
			if werr != nil {
				return werr
			}
			if ok && !yield(entry, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})

		if !stopped && ctx.Err() != nil {
			yield(entities.FileEntry{}, ctx.Err())
		}
	}
}

type walkItem struct {
	entry entities.FileEntry
	err   error
	path  string
}

// walkParallel usa fastwalk y después ordena lo recolectado para que el orden
// de descubrimiento sea idéntico al del modo secuencial.
func (s *FileScanner) walkParallel(ctx context.Context, root string) iter.Seq2[entities.FileEntry, error] {
	return func(yield func(entities.FileEntry, error) bool) {
		var (
			mu    sync.Mutex
			items []walkItem
		)

		conf := &fastwalk.Config{
			Follow: false, // Nunca seguimos enlaces a directorios
		}

		walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return context.Canceled
			default:
			}

			entry, ok, werr := s.visit(root, path, d, err)
			if werr != nil && errors.Is(werr, filepath.SkipDir) {
				return werr
			}
			if werr == nil && !ok {
				return nil
			}

			mu.Lock()
			items = append(items, walkItem{entry: entry, err: werr, path: path})
			mu.Unlock()
			return nil
		})

		sort.SliceStable(items, func(i, j int) bool {
			return lessByComponents(items[i].path, items[j].path)
		})

		for _, it := range items {
			if !yield(it.entry, it.err) {
				return
			}
		}

		if ctx.Err() != nil {
			yield(entities.FileEntry{}, ctx.Err())
			return
		}
		if walkErr != nil {
			yield(entities.FileEntry{}, &entities.TraversalError{Path: root, Err: walkErr})
		}
	}
}

// visit decide qué hacer con una entrada. Devuelve filepath.SkipDir para
// podar carpetas, un *TraversalError para fallos de acceso, o la entrada
// construida con ok=true si el archivo debe entregarse.
func (s *FileScanner) visit(root, path string, d fs.DirEntry, err error) (entities.FileEntry, bool, error) {
	// 1. Manejo de errores de acceso (permisos, carreras con borrados)
	if err != nil {
		return entities.FileEntry{}, false, &entities.TraversalError{Path: path, Err: err}
	}

	isRoot := path == root

	// 2. Carpetas: excluidas u ocultas se podan
	if d.IsDir() {
		if isRoot {
			return entities.FileEntry{}, false, nil
		}
		if _, ok := s.excludeMap[d.Name()]; ok {
			return entities.FileEntry{}, false, filepath.SkipDir
		}
		if !s.cfg.IncludeHidden && isHidden(d.Name()) {
			return entities.FileEntry{}, false, filepath.SkipDir
		}
		return entities.FileEntry{}, false, nil
	}

	if !isRoot && !s.cfg.IncludeHidden && isHidden(d.Name()) {
		return entities.FileEntry{}, false, nil
	}

	// 3. Solo archivos regulares, o enlaces a ellos si se pidió
	var (
		info   fs.FileInfo
		target string
	)
	switch {
	case d.Type().IsRegular():
		info, err = d.Info()
	case d.Type()&fs.ModeSymlink != 0 && s.cfg.FollowSymlinks:
		info, err = os.Stat(path)
		if err == nil && !info.Mode().IsRegular() {
			return entities.FileEntry{}, false, nil
		}
		if err == nil {
			target, err = filepath.EvalSymlinks(path)
		}
	default:
		return entities.FileEntry{}, false, nil
	}
	if err != nil {
		return entities.FileEntry{}, false, &entities.TraversalError{Path: path, Err: err}
	}

	// 4. Filtros de extensión y tamaño
	if !s.matchesExtension(path) {
		return entities.FileEntry{}, false, nil
	}
	if info.Size() < s.cfg.MinSize {
		return entities.FileEntry{}, false, nil
	}

	return entities.FileEntry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Target:  target,
	}, true, nil
}

func (s *FileScanner) matchesExtension(path string) bool {
	if len(s.extMap) == 0 {
		return true
	}
	ext := normalizeExt(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := s.extMap[ext]
	return ok
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// lessByComponents reproduce el orden de filepath.WalkDir: léxico por
// componente de ruta, con cada carpeta antes que su contenido.
func lessByComponents(a, b string) bool {
	ac := strings.Split(a, string(filepath.Separator))
	bc := strings.Split(b, string(filepath.Separator))
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if ac[i] != bc[i] {
			return ac[i] < bc[i]
		}
	}
	return len(ac) < len(bc)
}

// Describe resume la configuración para los logs de depuración.
func (s *FileScanner) Describe() string {
	return fmt.Sprintf("ext=%v excludes=%v hidden=%t min=%d follow=%t parallel=%t",
		s.cfg.Extensions, s.cfg.Excludes, s.cfg.IncludeHidden,
		s.cfg.MinSize, s.cfg.FollowSymlinks, s.cfg.Parallel)
}
