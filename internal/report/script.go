package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// shellQuote encierra s entre comillas simples, donde sh no expande nada.
// Cada comilla simple se cierra, se escapa y se vuelve a abrir. Los bytes se
// copian tal cual, así que también sirve para nombres que no son UTF-8 o
// que contienen saltos de línea.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// WriteScript genera un script sh que elimina los duplicados para que el
// usuario pueda revisarlo antes de ejecutarlo.
func WriteScript(r Report, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#!/bin/sh\n")
	fmt.Fprintf(bw, "# Generado por ftools dupes (%s)\n", r.Metadata.Algorithm)
	fmt.Fprintf(bw, "echo 'Iniciando limpieza...'\n\n")

	for _, g := range r.Groups {
		if len(g.Victims) == 0 {
			continue
		}
		// En los comentarios la ruta va escapada para que quepa en una línea
		fmt.Fprintf(bw, "# Group Hash: %s\n", g.Digest)
		fmt.Fprintf(bw, "# Keeper: %s\n", strconv.Quote(g.Keeper))
		for _, v := range g.Victims {
			fmt.Fprintf(bw, "rm -v -- %s\n", shellQuote(v.Path))
		}
		fmt.Fprintf(bw, "\n")
	}
	return bw.Flush()
}

// SaveScript escribe el script en filename con permisos de ejecución.
func SaveScript(r Report, filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if err := WriteScript(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
