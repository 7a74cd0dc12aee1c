package processing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/systemstart/many-scaffold/pkg/failure"
)

func TestLoadSubstitutionsFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "substitutions.yaml")
	if err := os.WriteFile(f, []byte("app_name: acme\nport: 8080\nssl: true\nempty:\n"), 0600); err != nil {
		t.Fatal(err)
	}

	subs, err := LoadSubstitutionsFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{"app_name": "acme", "port": "8080", "ssl": "true", "empty": ""}
	for k, v := range want {
		if subs[k] != v {
			t.Errorf("%s = %q, want %q", k, subs[k], v)
		}
	}
}

func TestLoadSubstitutionsFile_TOML(t *testing.T) {
	f := filepath.Join(t.TempDir(), "substitutions.toml")
	if err := os.WriteFile(f, []byte("app_name = \"acme\"\nport = 8080\n"), 0600); err != nil {
		t.Fatal(err)
	}

	subs, err := LoadSubstitutionsFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs["app_name"] != "acme" || subs["port"] != "8080" {
		t.Errorf("unexpected substitutions: %v", subs)
	}

	nested := filepath.Join(t.TempDir(), "nested.toml")
	if err := os.WriteFile(nested, []byte("[db]\nname = \"x\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSubstitutionsFile(nested); !errors.Is(err, failure.ErrConfiguration) {
		t.Errorf("expected ConfigurationError for a table, got %v", err)
	}
}

func TestLoadSubstitutionsFile_Empty(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "substitutions.yaml")
	if err := os.WriteFile(f, []byte(""), 0600); err != nil {
		t.Fatal(err)
	}

	subs, err := LoadSubstitutionsFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs == nil || len(subs) != 0 {
		t.Errorf("expected empty map, got %v", subs)
	}
}

func TestLoadSubstitutionsFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "{{invalid"},
		{"nested value", "db:\n  name: x\n"},
		{"list value", "hosts: [a, b]\n"},
		{"invalid name", "app-name: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filepath.Join(t.TempDir(), "substitutions.yaml")
			if err := os.WriteFile(f, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSubstitutionsFile(f); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := LoadSubstitutionsFile("/nonexistent/substitutions.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseAssignments(t *testing.T) {
	subs, err := ParseAssignments([]string{"app_name=acme", "url=https://x.org/?a=b", "blank="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subs["app_name"] != "acme" || subs["url"] != "https://x.org/?a=b" || subs["blank"] != "" {
		t.Errorf("unexpected substitutions: %v", subs)
	}

	for _, bad := range []string{"novalue", "bad-name=x", "=x"} {
		if _, err := ParseAssignments([]string{bad}); !errors.Is(err, failure.ErrConfiguration) {
			t.Errorf("ParseAssignments(%q): expected ConfigurationError, got %v", bad, err)
		}
	}
}

func TestEnvSubstitutions(t *testing.T) {
	environ := []string{
		"HOME=/root",
		"SCAFFOLD_APP_NAME=acme",
		"SCAFFOLD_HOST=acme.dev",
		"SCAFFOLD_=empty",
		"SCAFFOLD_BAD-NAME=x",
	}

	got := EnvSubstitutions(environ)
	if len(got) != 2 || got["app_name"] != "acme" || got["host"] != "acme.dev" {
		t.Errorf("unexpected substitutions: %v", got)
	}
}

func TestMergeSubstitutions(t *testing.T) {
	recipe := map[string]string{"app_name": "recipe", "host": "localhost"}
	file := map[string]string{"app_name": "file"}
	flags := map[string]string{"port": "3000"}

	merged := MergeSubstitutions(recipe, file, nil, flags)

	want := map[string]string{"app_name": "file", "host": "localhost", "port": "3000"}
	if len(merged) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(merged), merged)
	}
	for k, v := range want {
		if merged[k] != v {
			t.Errorf("%s = %q, want %q", k, merged[k], v)
		}
	}

	if recipe["app_name"] != "recipe" {
		t.Error("inputs must not be modified")
	}
}
