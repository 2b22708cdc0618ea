package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON escribe el reporte indentado.
func WriteJSON(r Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("codificando JSON: %w", err)
	}
	return nil
}

// SaveJSON guarda el reporte en un archivo.
func SaveJSON(r Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
