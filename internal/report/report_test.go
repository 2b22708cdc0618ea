package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soyunomas/ftools/internal/aggregate"
	"github.com/soyunomas/ftools/internal/entities"
)

func sampleResult() *entities.RunResult {
	groups := []entities.DuplicateGroup{
		{
			Size:      2048,
			Digest:    "aaaabbbbccccddddeeee",
			Algorithm: "sha256",
			Members: []entities.FileEntry{
				{Path: "/data/a.txt", Size: 2048},
				{Path: "/data/copy/a.txt", Size: 2048},
				{Path: "/data/copy/a (1).txt", Size: 2048},
			},
		},
	}
	result := aggregate.Summarize(groups, 10, 50000)
	result.Roots = []string{"/data"}
	result.Algorithm = "sha256"
	result.Elapsed = 1500 * time.Millisecond
	return result
}

func TestBuild(t *testing.T) {
	warnings := []entities.Warning{{Path: "/data/x", Message: "boom", Kind: entities.WarnIO}}
	rep := Build(sampleResult(), warnings, "first", nil)

	if rep.Summary.TotalGroups != 1 || rep.Summary.TotalDuplicates != 2 {
		t.Errorf("Unexpected summary: %+v", rep.Summary)
	}
	if rep.Summary.WastedBytes != 4096 {
		t.Errorf("Expected 4096 wasted bytes, got %d", rep.Summary.WastedBytes)
	}
	if rep.Summary.WastedBytesHuman != "4.0 KiB" {
		t.Errorf("Expected 4.0 KiB, got %s", rep.Summary.WastedBytesHuman)
	}
	if rep.Groups[0].Keeper != "/data/a.txt" || len(rep.Groups[0].Victims) != 2 {
		t.Errorf("Unexpected group: %+v", rep.Groups[0])
	}
	if rep.Actions != nil {
		t.Error("Expected no action summary without an outcome")
	}
	if len(rep.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(rep.Warnings))
	}
}

func TestBuild_WithOutcome(t *testing.T) {
	outcome := &aggregate.Outcome{
		Action:     aggregate.ActionDelete,
		Removed:    1,
		FreedBytes: 2048,
		Removals: []aggregate.Removal{
			{Path: "/data/copy/a.txt"},
			{Path: "/data/copy/a (1).txt", Err: errors.New("denied")},
		},
		Warnings: []entities.Warning{{Path: "/data/copy/a (1).txt", Message: "denied", Kind: entities.WarnDeletion}},
	}
	rep := Build(sampleResult(), nil, "first", outcome)

	if rep.Actions == nil || rep.Actions.Mode != "delete" || rep.Actions.Removed != 1 {
		t.Fatalf("Unexpected actions: %+v", rep.Actions)
	}
	if len(rep.Warnings) != 1 || rep.Warnings[0].Kind != entities.WarnDeletion {
		t.Errorf("Expected deletion warning to be merged, got %v", rep.Warnings)
	}

	var buf bytes.Buffer
	if err := WriteText(rep, outcome, &buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"deleted", "failed", "WARNINGS (1)", "2.0 KiB freed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteText(t *testing.T) {
	rep := Build(sampleResult(), nil, "first", nil)

	var buf bytes.Buffer
	if err := WriteText(rep, nil, &buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"/data/a.txt", "/data/copy/a.txt", "keep", "dupe", "4.0 KiB", "aaaabbbbccccdddd"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WARNINGS") {
		t.Error("Warnings section should be absent without warnings")
	}
}

func TestWriteText_NoGroups(t *testing.T) {
	result := aggregate.Summarize(nil, 3, 30)
	var buf bytes.Buffer
	if err := WriteText(Build(result, nil, "first", nil), nil, &buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No duplicate files found") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	rep := Build(sampleResult(), nil, "oldest", nil)

	var buf bytes.Buffer
	if err := WriteJSON(rep, &buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	summary := decoded["summary"].(map[string]any)
	if summary["wasted_bytes"].(float64) != 4096 {
		t.Errorf("Unexpected wasted_bytes: %v", summary["wasted_bytes"])
	}
	meta := decoded["metadata"].(map[string]any)
	if meta["strategy"] != "oldest" || meta["algorithm"] != "sha256" {
		t.Errorf("Unexpected metadata: %v", meta)
	}
	if _, ok := decoded["actions"]; ok {
		t.Error("Expected actions to be omitted")
	}
}

func TestWriteScript(t *testing.T) {
	rep := Build(sampleResult(), nil, "first", nil)

	var buf bytes.Buffer
	if err := WriteScript(rep, &buf); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "#!/bin/sh\n") {
		t.Error("Expected shebang")
	}
	if !strings.Contains(out, `rm -v -- '/data/copy/a (1).txt'`) {
		t.Errorf("Expected quoted rm line:\n%s", out)
	}
	if strings.Contains(out, `rm -v -- '/data/a.txt'`) {
		t.Error("Keeper must never be removed by the script")
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `'plain'`},
		{"it's", `'it'\''s'`},
		{"$(rm -rf ~)", `'$(rm -rf ~)'`},
		{"a\nb", "'a\nb'"},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWriteScript_HostileNamesRunSafely(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	names := []string{
		"x$(touch PWNED)",
		"tick`touch PWNED2`",
		"it's here",
		"new\nline",
		"$HOME",
		"bad\xff\xfe",
		"-rf",
	}

	keeper := filepath.Join(dir, "keeper")
	if err := os.WriteFile(keeper, []byte("k"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	group := GroupResult{Digest: "d", Keeper: keeper}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("k"), 0o644); err != nil {
			t.Skipf("filesystem rejects %q: %v", name, err)
		}
		group.Victims = append(group.Victims, Victim{Path: path, Size: 1})
	}

	script := filepath.Join(t.TempDir(), "clean.sh")
	if err := SaveScript(Report{Groups: []GroupResult{group}}, script); err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}

	cmd := exec.Command(sh, script)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("script failed: %v\n%s", err, out)
	}

	for _, marker := range []string{"PWNED", "PWNED2"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			t.Errorf("Command substitution ran and created %s", marker)
		}
	}
	for _, v := range group.Victims {
		if _, err := os.Lstat(v.Path); !os.IsNotExist(err) {
			t.Errorf("Expected %q to be removed", v.Path)
		}
	}
	if _, err := os.Stat(keeper); err != nil {
		t.Errorf("Keeper must remain: %v", err)
	}
}

func TestWriteHashes(t *testing.T) {
	lines := []HashLine{
		{Path: "a", Algorithm: "sha256", Digest: "abc"},
		{Path: "b", Algorithm: "sha256", Error: "missing"},
	}

	var buf bytes.Buffer
	if err := WriteHashesText(lines, &buf); err != nil {
		t.Fatalf("WriteHashesText failed: %v", err)
	}
	if !strings.Contains(buf.String(), "abc  a\n") || !strings.Contains(buf.String(), "b: ") {
		t.Errorf("Unexpected text:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteHashesJSON(lines, &buf); err != nil {
		t.Fatalf("WriteHashesJSON failed: %v", err)
	}
	var decoded []HashLine
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 2 {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded[1].Error != "missing" {
		t.Errorf("Unexpected decoded: %+v", decoded)
	}
}
