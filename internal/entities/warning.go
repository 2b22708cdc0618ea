package entities

import (
	"errors"
)

// WarningKind clasifica el origen de un aviso no fatal.
type WarningKind string

const (
	WarnTraversal WarningKind = "traversal"
	WarnIO        WarningKind = "io"
	WarnDeletion  WarningKind = "deletion"
)

// Warning es un fallo por archivo que no aborta la ejecución.
type Warning struct {
	Path    string      `json:"path"`
	Message string      `json:"message"`
	Kind    WarningKind `json:"kind"`
}

// NewWarning clasifica err según la taxonomía de errores.
func NewWarning(path string, err error) Warning {
	kind := WarnIO

	var (
		te *TraversalError
		de *DeletionError
	)
	switch {
	case errors.As(err, &te):
		kind = WarnTraversal
	case errors.As(err, &de):
		kind = WarnDeletion
	}

	return Warning{Path: path, Message: err.Error(), Kind: kind}
}
