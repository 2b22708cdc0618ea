package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soyunomas/ftools/internal/aggregate"
	"github.com/soyunomas/ftools/internal/engine"
	"github.com/soyunomas/ftools/internal/entities"
	"github.com/soyunomas/ftools/internal/hasher"
	"github.com/soyunomas/ftools/internal/scanner"
)

const (
	// AppName es el nombre de la aplicación.
	AppName = "ftools"
	// EnvPrefix es el prefijo de las variables de entorno.
	EnvPrefix = "FTOOLS"
	// ConfigFileName es el nombre del archivo de configuración (sin extensión).
	ConfigFileName = "config"
)

// Claves de configuración. Coinciden con los nombres de los flags.
const (
	KeyAlgorithm      = "algorithm"
	KeyExtensions     = "extensions"
	KeyExcludes       = "excludes"
	KeyIncludeHidden  = "include-hidden"
	KeyIncludeEmpty   = "include-empty"
	KeyFollowSymlinks = "follow-symlinks"
	KeyParallelWalk   = "parallel-walk"
	KeyMinSize        = "min-size"
	KeyWorkers        = "workers"
	KeyKeep           = "keep"
	KeyDelete         = "delete"
	KeyTrash          = "trash"
	KeyTrashDir       = "trash-dir"
	KeyOutput         = "output"
	KeyReportFile     = "report-file"
	KeyScript         = "script"
	KeyVerbose        = "verbose"
)

// OutputFormats son los formatos aceptados por la clave output.
var OutputFormats = []string{"text", "json"}

// Settings es la configuración ya resuelta de una invocación de dupes.
type Settings struct {
	Algorithm      string   `mapstructure:"algorithm"`
	Extensions     []string `mapstructure:"extensions"`
	Excludes       []string `mapstructure:"excludes"`
	IncludeHidden  bool     `mapstructure:"include-hidden"`
	IncludeEmpty   bool     `mapstructure:"include-empty"`
	FollowSymlinks bool     `mapstructure:"follow-symlinks"`
	ParallelWalk   bool     `mapstructure:"parallel-walk"`
	MinSize        string   `mapstructure:"min-size"`
	Workers        int      `mapstructure:"workers"`
	Keep           string   `mapstructure:"keep"`
	Delete         bool     `mapstructure:"delete"`
	Trash          bool     `mapstructure:"trash"`
	TrashDir       string   `mapstructure:"trash-dir"`
	Output         string   `mapstructure:"output"`
	ReportFile     string   `mapstructure:"report-file"`
	Script         string   `mapstructure:"script"`
	Verbose        bool     `mapstructure:"verbose"`
}

// DefaultSettings devuelve la configuración por defecto.
func DefaultSettings() Settings {
	return Settings{
		Algorithm: hasher.SHA256.String(),
		Excludes:  slices.Clone(scanner.DefaultExcludes),
		MinSize:   "0B",
		Keep:      engine.KeepFirst.String(),
		TrashDir:  aggregate.DefaultTrashDir,
		Output:    "text",
	}
}

// Dir devuelve el directorio de configuración de ftools ($XDG_CONFIG_HOME o
// ~/.config).
func Dir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("obteniendo el directorio home: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName), nil
}

// New crea una instancia de viper con defaults y variables de entorno.
func New() *viper.Viper {
	v := viper.New()

	d := DefaultSettings()
	v.SetDefault(KeyAlgorithm, d.Algorithm)
	v.SetDefault(KeyExtensions, d.Extensions)
	v.SetDefault(KeyExcludes, d.Excludes)
	v.SetDefault(KeyIncludeHidden, d.IncludeHidden)
	v.SetDefault(KeyIncludeEmpty, d.IncludeEmpty)
	v.SetDefault(KeyFollowSymlinks, d.FollowSymlinks)
	v.SetDefault(KeyParallelWalk, d.ParallelWalk)
	v.SetDefault(KeyMinSize, d.MinSize)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyKeep, d.Keep)
	v.SetDefault(KeyDelete, d.Delete)
	v.SetDefault(KeyTrash, d.Trash)
	v.SetDefault(KeyTrashDir, d.TrashDir)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyReportFile, d.ReportFile)
	v.SetDefault(KeyScript, d.Script)
	v.SetDefault(KeyVerbose, d.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load lee el archivo de configuración (explícito o en Dir) y enlaza los
// flags. Un archivo por defecto inexistente no es un error; uno explícito sí.
func Load(v *viper.Viper, configFile string, flags *pflag.FlagSet) (Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, &entities.ConfigError{Key: "config", Value: configFile, Err: err}
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Settings{}, fmt.Errorf("enlazando flags: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, &entities.ConfigError{Key: "config", Err: err}
	}
	return s, nil
}

// Action devuelve la acción destructiva pedida.
func (s Settings) Action() aggregate.Action {
	switch {
	case s.Delete:
		return aggregate.ActionDelete
	case s.Trash:
		return aggregate.ActionTrash
	default:
		return aggregate.ActionNone
	}
}

// Validate comprueba todas las claves sin construir nada.
func (s Settings) Validate() error {
	_, err := s.EngineOptions()
	return err
}

// EngineOptions traduce la configuración a opciones del engine.
func (s Settings) EngineOptions() (engine.Options, error) {
	var opts engine.Options

	// Solo una acción a la vez
	actions := 0
	for _, on := range []bool{s.Delete, s.Trash, s.Script != ""} {
		if on {
			actions++
		}
	}
	if actions > 1 {
		return opts, &entities.ConfigError{
			Key: "action",
			Err: errors.New("solo puedes elegir UNA acción: delete, trash o script"),
		}
	}

	alg, err := hasher.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return opts, err
	}

	strategy, err := engine.ParseStrategy(s.Keep)
	if err != nil {
		return opts, err
	}

	exts := splitList(s.Extensions)
	if err := scanner.ValidateExtensions(exts); err != nil {
		return opts, err
	}

	var minSize int64
	if s.MinSize != "" {
		size, err := humanize.ParseBytes(s.MinSize)
		if err != nil {
			return opts, &entities.ConfigError{Key: KeyMinSize, Value: s.MinSize, Err: err}
		}
		minSize = int64(size) //nolint:gosec // humanize devuelve tamaños razonables
	}

	if s.Workers < 0 {
		return opts, &entities.ConfigError{
			Key:   KeyWorkers,
			Value: fmt.Sprint(s.Workers),
			Err:   errors.New("no puede ser negativo"),
		}
	}

	if !slices.Contains(OutputFormats, strings.ToLower(s.Output)) {
		return opts, &entities.ConfigError{
			Key:   KeyOutput,
			Value: s.Output,
			Err:   fmt.Errorf("debe ser uno de %v", OutputFormats),
		}
	}

	opts = engine.Options{
		Scanner: scanner.Config{
			Extensions:     exts,
			Excludes:       splitList(s.Excludes),
			MinSize:        minSize,
			IncludeHidden:  s.IncludeHidden,
			FollowSymlinks: s.FollowSymlinks,
			Parallel:       s.ParallelWalk,
		},
		Algorithm:    alg,
		IncludeEmpty: s.IncludeEmpty,
		Strategy:     strategy,
		Workers:      s.Workers,
	}
	return opts, nil
}

// splitList acepta tanto listas como valores "a,b,c" venidos de entorno.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
