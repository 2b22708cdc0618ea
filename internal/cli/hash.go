package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/soyunomas/ftools/internal/config"
	"github.com/soyunomas/ftools/internal/dispatch"
	"github.com/soyunomas/ftools/internal/entities"
	"github.com/soyunomas/ftools/internal/hasher"
	"github.com/soyunomas/ftools/internal/report"
)

type hashOptions struct {
	algorithm string
	verify    string
	format    string
	workers   int
}

func newHashCommand(root *rootOptions) *cobra.Command {
	opts := &hashOptions{}

	cmd := &cobra.Command{
		Use:   "hash FILE...",
		Short: "Compute file hashes",
		Long: heredoc.Doc(`
			Calcula el hash de uno o más archivos en paralelo.

			Con --verify compara el hash de un único archivo con el valor
			esperado (sin distinguir mayúsculas; basta con un prefijo) y
			termina con código 2 si no coincide.
		`),
		Example: heredoc.Doc(`
			ftools hash *.iso
			ftools hash -a sha512 backup.tar
			ftools hash image.iso --verify 3a7bd3e2
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd.Context(), cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.algorithm, config.KeyAlgorithm, "a", hasher.SHA256.String(),
		"Hash algorithm: "+strings.Join(hasher.Names(), ", "))
	f.StringVar(&opts.verify, "verify", "", "Expected hash (single file only)")
	f.StringVarP(&opts.format, "format", "f", "text", "Output format: "+strings.Join(config.OutputFormats, ", "))
	f.IntVarP(&opts.workers, config.KeyWorkers, "j", 0, "Hashing workers (0 = number of CPUs)")

	return cmd
}

func runHash(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *hashOptions, files []string) error {
	alg, err := hasher.ParseAlgorithm(opts.algorithm)
	if err != nil {
		return err
	}
	if opts.verify != "" && len(files) != 1 {
		return &entities.ConfigError{Key: "verify", Value: opts.verify, Err: errors.New("solo admite un archivo")}
	}
	format := strings.ToLower(opts.format)
	if !slices.Contains(config.OutputFormats, format) {
		return &entities.ConfigError{Key: "format", Value: opts.format, Err: fmt.Errorf("debe ser uno de %v", config.OutputFormats)}
	}

	logger := newLogger(cmd.ErrOrStderr(), root.verbose)
	if alg.Discouraged() && opts.verify == "" {
		logger.Warn("algoritmo no recomendado para afirmar identidad", "algorithm", alg)
	}

	workers := opts.workers
	if workers <= 0 {
		workers = dispatch.DefaultWorkers()
	}

	results := dispatch.Run(ctx, workers, files, func(ctx context.Context, path string) (string, error) {
		return hasher.HashFile(ctx, path, alg)
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make([]report.HashLine, len(results))
	failed := 0
	for i, res := range results {
		lines[i] = report.HashLine{Path: res.Path, Algorithm: alg.String(), Digest: res.Value}
		if res.Err != nil {
			failed++
			lines[i].Error = res.Err.Error()
			logger.Debug("no se pudo hashear", "path", res.Path, "err", res.Err)
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		err = report.WriteHashesJSON(lines, out)
	} else {
		err = report.WriteHashesText(lines, out)
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d de %d archivos no se pudieron hashear", failed, len(files))
	}

	if opts.verify != "" {
		if !hasher.Verify(lines[0].Digest, opts.verify) {
			return &ExitError{Code: 2, Err: fmt.Errorf("%s: el hash no coincide con %s", lines[0].Path, opts.verify)}
		}
		if format == "text" {
			printf(out, "%s: OK\n", lines[0].Path)
		}
	}

	return nil
}
