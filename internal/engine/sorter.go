package engine

import (
	"errors"
	"sort"
	"strings"

	"github.com/soyunomas/ftools/internal/entities"
)

// KeepStrategy decide qué miembro de cada grupo queda en la posición [0]
// (el Keeper) cuando se aplica un borrado.
type KeepStrategy int

const (
	KeepFirst KeepStrategy = iota // Default: orden de descubrimiento
	KeepShortestPath
	KeepLongestPath
	KeepOldest
	KeepNewest
)

var strategyNames = []string{"first", "shortest", "longest", "oldest", "newest"}

func (s KeepStrategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// StrategyNames devuelve los nombres aceptados por ParseStrategy.
func StrategyNames() []string {
	return append([]string(nil), strategyNames...)
}

// ParseStrategy traduce el nombre de una estrategia.
func ParseStrategy(name string) (KeepStrategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range strategyNames {
		if s == n {
			return KeepStrategy(i), nil
		}
	}
	return 0, &entities.ConfigError{
		Key:   "keep",
		Value: name,
		Err:   errors.New("usa first, shortest, longest, oldest o newest"),
	}
}

// sortGroups organiza los archivos dentro de cada grupo según la estrategia.
// El objetivo es que el archivo en la posición [0] sea el "Keeper" (Original).
// El desempate final es siempre el orden de descubrimiento.
func sortGroups(groups []entities.DuplicateGroup, strategy KeepStrategy) {
	if strategy == KeepFirst {
		return
	}

	for _, group := range groups {
		files := group.Members

		sort.SliceStable(files, func(i, j int) bool {
			f1 := files[i]
			f2 := files[j]

			switch strategy {
			case KeepShortestPath:
				// [0] debe ser el más corto
				if len(f1.Path) != len(f2.Path) {
					return len(f1.Path) < len(f2.Path)
				}

			case KeepLongestPath:
				// [0] debe ser el más largo
				if len(f1.Path) != len(f2.Path) {
					return len(f1.Path) > len(f2.Path)
				}

			case KeepOldest:
				// [0] debe ser el más viejo (Fecha menor)
				if !f1.ModTime.Equal(f2.ModTime) {
					return f1.ModTime.Before(f2.ModTime)
				}

			case KeepNewest:
				// [0] debe ser el más nuevo (Fecha mayor)
				if !f1.ModTime.Equal(f2.ModTime) {
					return f1.ModTime.After(f2.ModTime)
				}
			}

			return f1.Order < f2.Order
		})
	}
}
