package entities

import (
	"fmt"
)

// TraversalError: un directorio o archivo no pudo listarse o consultarse.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("recorriendo %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// IoError: un archivo no pudo leerse por completo durante el hashing.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("leyendo %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// DeletionError: un archivo marcado para eliminación no pudo borrarse.
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("eliminando %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// ConfigError es fatal para la invocación y se detecta antes de escanear.
type ConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s inválido: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("%s inválido %q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
