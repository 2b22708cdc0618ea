// Package cli arma los comandos cobra de ftools.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/soyunomas/ftools/internal/config"
)

// CLI representa la interfaz de línea de comandos.
type CLI struct {
	version string
}

// New crea una CLI con la versión dada.
func New(version string) CLI {
	return CLI{version: version}
}

// ExitError lleva un código de salida distinto de 1.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode traduce el error devuelto por Execute a un código de salida.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

type rootOptions struct {
	cfgFile string
	verbose bool
}

// Execute corre el comando raíz con fang. Ctrl-C cancela el contexto.
func (c CLI) Execute(ctx context.Context) error {
	return fang.Execute(
		ctx,
		NewRootCommand(c.version),
		fang.WithVersion(c.version),
		fang.WithNotifySignal(os.Interrupt),
	)
}

// NewRootCommand construye el árbol de comandos.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Toolkit de archivos: duplicados y hashes",
		Long: heredoc.Doc(`
			ftools encuentra archivos duplicados y calcula hashes.

			El detector de duplicados filtra por etapas: primero por tamaño,
			luego por el hash de los primeros 4 KiB y solo al final hashea el
			contenido completo de los candidatos que quedan.

			La configuración se lee de $XDG_CONFIG_HOME/ftools/config.yaml,
			de variables FTOOLS_* y de los flags, en ese orden de prioridad
			creciente.
		`),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"config file (default is $XDG_CONFIG_HOME/ftools/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, config.KeyVerbose, "v", false, "enable debug logging")

	root.AddCommand(newDupesCommand(opts))
	root.AddCommand(newHashCommand(opts))

	return root
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// isStderr indica si w es el stderr real del proceso (y no un buffer de test).
func isStderr(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stderr
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...) //nolint:forbidigo // Salida a consola
}
