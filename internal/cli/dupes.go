package cli

import (
	"context"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/soyunomas/ftools/internal/aggregate"
	"github.com/soyunomas/ftools/internal/config"
	"github.com/soyunomas/ftools/internal/engine"
	"github.com/soyunomas/ftools/internal/hasher"
	"github.com/soyunomas/ftools/internal/report"
)

func newDupesCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupes [paths...]",
		Short: "Find duplicate files",
		Long: heredoc.Doc(`
			Busca archivos con contenido idéntico bajo una o más rutas.

			Por defecto solo lista los duplicados (dry run). El primer archivo
			de cada grupo según --keep se conserva siempre; --delete borra el
			resto, --trash los mueve a --trash-dir y --script genera un script
			sh para revisarlo antes de borrar.
		`),
		Example: heredoc.Doc(`
			ftools dupes ~/Pictures --ext jpg,png --min-size 10KiB
			ftools dupes . --keep oldest --trash
			ftools dupes /data -o json --report-file dupes.json
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDupes(cmd.Context(), cmd, root, args)
		},
	}

	d := config.DefaultSettings()
	f := cmd.Flags()
	f.SortFlags = false

	f.StringP(config.KeyAlgorithm, "a", d.Algorithm, "Hash algorithm: "+strings.Join(hasher.Names(), ", "))
	f.StringSliceP(config.KeyExtensions, "x", nil, "Only consider these extensions (e.g. jpg,png)")
	f.StringSliceP(config.KeyExcludes, "e", d.Excludes, "Directory names to skip")
	f.String(config.KeyMinSize, d.MinSize, "Minimum file size (e.g. 1KiB)")
	f.Bool(config.KeyIncludeHidden, false, "Include hidden files and directories")
	f.Bool(config.KeyIncludeEmpty, false, "Report empty files as duplicates")
	f.Bool(config.KeyFollowSymlinks, false, "Follow symlinks to regular files")
	f.Bool(config.KeyParallelWalk, false, "Walk directories in parallel")
	f.IntP(config.KeyWorkers, "j", 0, "Hashing workers (0 = number of CPUs)")
	f.StringP(config.KeyKeep, "k", d.Keep, "Keeper policy: "+strings.Join(engine.StrategyNames(), ", "))
	f.Bool(config.KeyDelete, false, "Delete duplicates (keeps one file per group)")
	f.Bool(config.KeyTrash, false, "Move duplicates to --trash-dir")
	f.String(config.KeyTrashDir, d.TrashDir, "Trash directory used by --trash")
	f.String(config.KeyScript, "", "Write a sh script that removes the duplicates")
	f.StringP(config.KeyOutput, "o", d.Output, "Output format: "+strings.Join(config.OutputFormats, ", "))
	f.String(config.KeyReportFile, "", "Also save the JSON report to this file")

	return cmd
}

func runDupes(ctx context.Context, cmd *cobra.Command, root *rootOptions, args []string) error {
	settings, err := config.Load(config.New(), root.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	opts, err := settings.EngineOptions()
	if err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := newLogger(stderr, settings.Verbose)

	if opts.Algorithm.Discouraged() {
		logger.Warn("algoritmo no recomendado para afirmar identidad", "algorithm", opts.Algorithm)
	}
	opts.Logger = logger

	runner := engine.New(opts)

	var stop func()
	if strings.ToLower(settings.Output) == "text" && !settings.Verbose && isStderr(stderr) && isTerminal() {
		stop = startProgress(ctx, runner.Progress(), stderr, progressInterval)
	}

	result, warnings, err := runner.Run(ctx, args...)
	if stop != nil {
		stop()
	}
	if err != nil {
		return err
	}

	var outcome *aggregate.Outcome
	if action := settings.Action(); action != aggregate.ActionNone {
		outcome, err = aggregate.Apply(ctx, result, action, aggregate.Options{
			TrashDir: settings.TrashDir,
			Progress: runner.Progress(),
		})
		if err != nil {
			return err
		}
	}

	rep := report.Build(result, warnings, opts.Strategy.String(), outcome)

	if settings.Script != "" {
		if err := report.SaveScript(rep, settings.Script); err != nil {
			return err
		}
		printf(stderr, "Script generado: %s\n", settings.Script)
	}

	if settings.ReportFile != "" {
		if err := report.SaveJSON(rep, settings.ReportFile); err != nil {
			return err
		}
		printf(stderr, "Reporte guardado: %s\n", settings.ReportFile)
	}

	if strings.ToLower(settings.Output) == "json" {
		return report.WriteJSON(rep, stdout)
	}
	return report.WriteText(rep, outcome, stdout)
}
