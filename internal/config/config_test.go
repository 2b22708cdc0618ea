package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"github.com/soyunomas/ftools/internal/aggregate"
	"github.com/soyunomas/ftools/internal/engine"
	"github.com/soyunomas/ftools/internal/entities"
	"github.com/soyunomas/ftools/internal/hasher"
	"github.com/soyunomas/ftools/internal/scanner"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	s, err := Load(New(), "", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	opts, err := s.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions failed: %v", err)
	}
	if opts.Algorithm != hasher.SHA256 {
		t.Errorf("Expected sha256, got %s", opts.Algorithm)
	}
	if opts.Strategy != engine.KeepFirst {
		t.Errorf("Expected keep first, got %s", opts.Strategy)
	}
	if opts.IncludeEmpty || opts.Scanner.IncludeHidden || opts.Scanner.FollowSymlinks {
		t.Errorf("Expected boolean options off by default: %+v", opts)
	}
	if !reflect.DeepEqual(opts.Scanner.Excludes, scanner.DefaultExcludes) {
		t.Errorf("Unexpected default excludes: %v", opts.Scanner.Excludes)
	}
	if s.Action() != aggregate.ActionNone {
		t.Errorf("Expected dry run by default")
	}
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "ftools.yaml")
	content := "algorithm: sha512\nextensions: [jpg, png]\nmin-size: 1KiB\nkeep: oldest\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("FTOOLS_INCLUDE_HIDDEN", "true")
	t.Setenv("FTOOLS_KEEP", "newest")

	s, err := Load(New(), path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	opts, err := s.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions failed: %v", err)
	}

	if opts.Algorithm != hasher.SHA512 {
		t.Errorf("Expected sha512 from file, got %s", opts.Algorithm)
	}
	if !reflect.DeepEqual(opts.Scanner.Extensions, []string{"jpg", "png"}) {
		t.Errorf("Expected [jpg png], got %v", opts.Scanner.Extensions)
	}
	if opts.Scanner.MinSize != 1024 {
		t.Errorf("Expected 1024 bytes, got %d", opts.Scanner.MinSize)
	}
	if !opts.Scanner.IncludeHidden {
		t.Error("Expected include-hidden from environment")
	}
	if opts.Strategy != engine.KeepNewest {
		t.Errorf("Expected env to override file, got %s", opts.Strategy)
	}
}

func TestLoad_DefaultConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	dir := filepath.Join(home, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := Load(New(), "", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Workers != 3 {
		t.Errorf("Expected 3 workers from default config dir, got %d", s.Workers)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"), nil)
	var cfgErr *entities.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigError, got %v", err)
	}
}

func TestLoad_FlagsOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FTOOLS_ALGORITHM", "md5")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(KeyAlgorithm, "sha256", "")
	flags.Bool(KeyDelete, false, "")
	if err := flags.Parse([]string{"--algorithm", "xxhash", "--delete"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	s, err := Load(New(), "", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Algorithm != "xxhash" {
		t.Errorf("Expected flag to win, got %s", s.Algorithm)
	}
	if s.Action() != aggregate.ActionDelete {
		t.Errorf("Expected delete action")
	}
}

func TestEngineOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Settings)
		key  string
	}{
		{"algorithm", func(s *Settings) { s.Algorithm = "crc32" }, "algorithm"},
		{"min-size", func(s *Settings) { s.MinSize = "12 parsecs" }, KeyMinSize},
		{"keep", func(s *Settings) { s.Keep = "random" }, "keep"},
		{"extension", func(s *Settings) { s.Extensions = []string{"*.jpg"} }, "extension"},
		{"workers", func(s *Settings) { s.Workers = -1 }, KeyWorkers},
		{"output", func(s *Settings) { s.Output = "xml" }, KeyOutput},
		{"actions", func(s *Settings) { s.Delete, s.Trash = true, true }, "action"},
		{"script and delete", func(s *Settings) { s.Delete, s.Script = true, "x.sh" }, "action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mod(&s)

			err := s.Validate()
			var cfgErr *entities.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("Expected key %q, got %q", tt.key, cfgErr.Key)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"jpg, png", "", " gif ,"})
	want := []string{"jpg", "png", "gif"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
