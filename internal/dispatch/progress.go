package dispatch

import "sync/atomic"

// Progress contiene contadores compartidos actualizados por las etapas del
// pipeline. Todos son atómicos para poder escribirse desde los workers y
// leerse desde el reporter de progreso sin locks.
type Progress struct {
	FilesDiscovered atomic.Int64
	BytesDiscovered atomic.Int64
	Candidates      atomic.Int64
	PartialHashed   atomic.Int64
	FullHashed      atomic.Int64
	BytesHashed     atomic.Int64
	Errors          atomic.Int64
	Removed         atomic.Int64
}

// Snapshot es una copia inmutable de Progress.
type Snapshot struct {
	FilesDiscovered int64
	BytesDiscovered int64
	Candidates      int64
	PartialHashed   int64
	FullHashed      int64
	BytesHashed     int64
	Errors          int64
	Removed         int64
}

// Snapshot lee todos los contadores. Un Progress nil devuelve ceros.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	return Snapshot{
		FilesDiscovered: p.FilesDiscovered.Load(),
		BytesDiscovered: p.BytesDiscovered.Load(),
		Candidates:      p.Candidates.Load(),
		PartialHashed:   p.PartialHashed.Load(),
		FullHashed:      p.FullHashed.Load(),
		BytesHashed:     p.BytesHashed.Load(),
		Errors:          p.Errors.Load(),
		Removed:         p.Removed.Load(),
	}
}
