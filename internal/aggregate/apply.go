package aggregate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soyunomas/ftools/internal/dispatch"
	"github.com/soyunomas/ftools/internal/entities"
)

// Action es lo que se hace con cada duplicado (todo menos el Keeper).
type Action int

const (
	ActionNone   Action = iota // Dry run: solo se listan los candidatos
	ActionDelete               // Borrado definitivo
	ActionTrash                // Mover a la carpeta de basura
)

// DefaultTrashDir es la carpeta de basura relativa al directorio de trabajo.
const DefaultTrashDir = "TRASH_BIN"

// ErrSameFile marca un duplicado que es el propio Keeper visto por un enlace.
var ErrSameFile = errors.New("es el mismo archivo que el conservado")

type Options struct {
	TrashDir string
	Progress *dispatch.Progress
}

// Removal describe el destino de un duplicado.
type Removal struct {
	Path   string `json:"path"`
	Keeper string `json:"keeper"`
	Size   int64  `json:"size"`
	Dest   string `json:"dest,omitempty"`
	Err    error  `json:"-"`
}

// Outcome resume una pasada de Apply.
type Outcome struct {
	Action     Action
	Removals   []Removal
	Removed    int
	FreedBytes int64
	Warnings   []entities.Warning
}

// Apply elimina (o mueve a la basura) todos los miembros de cada grupo
// excepto el primero. Es best-effort y no transaccional: un fallo se
// registra como aviso y no deshace lo ya borrado.
func Apply(ctx context.Context, result *entities.RunResult, action Action, opts Options) (*Outcome, error) {
	out := &Outcome{Action: action}

	if action == ActionTrash {
		if opts.TrashDir == "" {
			opts.TrashDir = DefaultTrashDir
		}
		if err := os.MkdirAll(opts.TrashDir, 0o755); err != nil {
			return nil, fmt.Errorf("creando carpeta de basura: %w", err)
		}
	}

	for _, g := range result.Groups {
		keeper := g.Keeper().Path

		for _, victim := range g.Duplicates() {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			rm := Removal{Path: victim.Path, Keeper: keeper, Size: victim.Size}

			if action != ActionNone && sameTarget(keeper, victim.Path) {
				rm.Err = &entities.DeletionError{Path: victim.Path, Err: ErrSameFile}
			} else {
				switch action {
				case ActionDelete:
					if err := os.Remove(victim.Path); err != nil {
						rm.Err = &entities.DeletionError{Path: victim.Path, Err: err}
					}
				case ActionTrash:
					dest, err := moveToTrash(victim.Path, opts.TrashDir)
					if err != nil {
						rm.Err = &entities.DeletionError{Path: victim.Path, Err: err}
					}
					rm.Dest = dest
				}
			}

			if rm.Err != nil {
				out.Warnings = append(out.Warnings, entities.NewWarning(victim.Path, rm.Err))
			} else if action != ActionNone {
				out.Removed++
				out.FreedBytes += victim.Size
				if opts.Progress != nil {
					opts.Progress.Removed.Add(1)
				}
			}

			out.Removals = append(out.Removals, rm)
		}
	}

	return out, nil
}

// sameTarget indica si dos rutas resuelven al mismo archivo a través de
// enlaces simbólicos. Si alguna no se puede resolver devuelve false y el
// borrado fallará por su cuenta.
func sameTarget(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false
	}
	return ra == rb
}
