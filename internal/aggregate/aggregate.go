// Package aggregate construye el RunResult final y aplica, si se pide, la
// política de borrado sobre los grupos confirmados.
package aggregate

import (
	"github.com/soyunomas/ftools/internal/entities"
)

// Summarize calcula los totales de espacio desperdiciado. Los grupos con
// menos de dos miembros se ignoran.
func Summarize(groups []entities.DuplicateGroup, filesScanned, bytesScanned int64) *entities.RunResult {
	result := &entities.RunResult{
		Groups:       make([]entities.DuplicateGroup, 0, len(groups)),
		FilesScanned: filesScanned,
		BytesScanned: bytesScanned,
	}

	for _, g := range groups {
		if len(g.Members) < 2 {
			continue
		}
		result.Groups = append(result.Groups, g)
		result.WastedBytes += g.Wasted()
	}

	return result
}
