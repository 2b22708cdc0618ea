package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// HashLine es el resultado de hashear un archivo con el subcomando hash.
type HashLine struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WriteHashesText imprime en el formato de sha256sum: "<digest>  <ruta>".
//
//nolint:forbidigo // Salida a consola
func WriteHashesText(lines []HashLine, w io.Writer) error {
	for _, l := range lines {
		if l.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", l.Path, dupeStyle.Render(l.Error))
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", l.Digest, l.Path)
	}
	return nil
}

func WriteHashesJSON(lines []HashLine, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if lines == nil {
		lines = []HashLine{}
	}
	return enc.Encode(lines)
}
