package entities

import (
	"time"
)

// FileEntry representa un archivo regular descubierto durante el recorrido.
// Es inmutable una vez creado.
type FileEntry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size_bytes"`
	ModTime time.Time `json:"mod_time"`
	// Order es el número de secuencia de descubrimiento. Identifica la
	// entrada cuando los resultados paralelos se reasocian.
	Order int `json:"-"`
	// Target es la ruta real cuando Path es un enlace simbólico seguido.
	Target string `json:"target,omitempty"`
}

// DuplicateGroup es un conjunto confirmado de archivos con contenido idéntico.
// Members[0] es el Keeper.
type DuplicateGroup struct {
	Size      int64       `json:"size"`
	Digest    string      `json:"digest"`
	Algorithm string      `json:"algorithm"`
	Members   []FileEntry `json:"members"`
}

// Keeper devuelve el miembro que se conserva al aplicar un borrado.
func (g DuplicateGroup) Keeper() FileEntry {
	return g.Members[0]
}

// Duplicates devuelve los miembros candidatos a borrado.
func (g DuplicateGroup) Duplicates() []FileEntry {
	return g.Members[1:]
}

// Wasted es el espacio ocupado por las copias redundantes.
func (g DuplicateGroup) Wasted() int64 {
	return g.Size * int64(len(g.Members)-1)
}

// Paths lista las rutas del grupo en orden.
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Members))
	for i, m := range g.Members {
		paths[i] = m.Path
	}
	return paths
}

// RunResult es el resultado de una ejecución completa del detector.
type RunResult struct {
	Roots        []string         `json:"roots"`
	Algorithm    string           `json:"algorithm"`
	Groups       []DuplicateGroup `json:"groups"`
	FilesScanned int64            `json:"total_files_scanned"`
	BytesScanned int64            `json:"total_bytes_scanned"`
	WastedBytes  int64            `json:"wasted_bytes"`
	Elapsed      time.Duration    `json:"elapsed"`
}

// DuplicateCount es el número total de archivos redundantes (sin contar Keepers).
func (r *RunResult) DuplicateCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Members) - 1
	}
	return n
}
