package render

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/systemstart/many-scaffold/pkg/failure"
)

func TestString(t *testing.T) {
	subs := map[string]string{"name": "Acme", "host": "acme.dev"}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare placeholder", "Hello {{name}}!", "Hello Acme!"},
		{"spaced placeholder", "Hello {{ name }}!", "Hello Acme!"},
		{"dot placeholder", "Hello {{ .name }}!", "Hello Acme!"},
		{"repeated", "{{name}}-{{name}}", "Acme-Acme"},
		{"sprig pipe", "{{ name | upper }}", "ACME"},
		{"sprig call", `{{ printf "%s@%s" "noreply" host }}`, "noreply@acme.dev"},
		{"conditional", `{{ if eq name "Acme" }}yes{{ else }}no{{ end }}`, "yes"},
		{"no placeholders", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String("t", tt.body, subs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestString_Unresolved(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
	}{
		{"bare", "{{ app_name }}", "app_name"},
		{"dot", "{{ .app_name }}", ".app_name"},
		{"inside if", "{{ if true }}{{ missing }}{{ end }}", "missing"},
		{"inside else", "{{ if true }}x{{ else }}{{ other }}{{ end }}", "other"},
		{"as pipe argument", "{{ missing | upper }}", "missing"},
		{"as call argument", `{{ printf "%s" missing }}`, "missing"},
		{"sprig name as placeholder", "<h1>{{title}}</h1>", "title"},
		{"sprig zero-argument name", "built {{now}}", "now"},
		{"builtin name", "{{ len }}", "len"},
		{"unknown function", `{{ shout "x" }}`, "shout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := String("t", tt.body, map[string]string{"name": "Acme"})
			if !errors.Is(err, failure.ErrUnresolvedPlaceholder) {
				t.Fatalf("expected UnresolvedPlaceholder, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantName) {
				t.Errorf("error %q does not name %q", err, tt.wantName)
			}
		})
	}
}

func TestString_ListsAllMissingSorted(t *testing.T) {
	_, err := String("t", "{{ zeta }} {{ alpha }} {{ zeta }}", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "alpha, zeta") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestString_SubstitutionShadowsSprig(t *testing.T) {
	got, err := String("t", "{{ title }}", map[string]string{"title": "Dashboard"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Dashboard" {
		t.Errorf("got %q", got)
	}
}

func TestString_SprigAfterPipe(t *testing.T) {
	got, err := String("t", `{{ app_name | title }} {{ title "x" }} {{ "x" | upper }}`, map[string]string{"app_name": "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Acme X X" {
		t.Errorf("got %q", got)
	}
}

func TestString_InvalidSubstitutionName(t *testing.T) {
	_, err := String("t", "hi", map[string]string{"app_name": "acme", "app-name": "x"})
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "app-name") {
		t.Errorf("error %q does not name the key", err)
	}

	_, err = File(fstest.MapFS{"a.tmpl": {Data: []byte("x")}}, "a.tmpl", map[string]string{"1st": "x"})
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Errorf("File: expected ConfigurationError, got %v", err)
	}
}

func TestString_SyntaxError(t *testing.T) {
	_, err := String("t", "{{ if }}", nil)
	if !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestFile(t *testing.T) {
	src := fstest.MapFS{
		"README.md.tmpl": {Data: []byte("# {{ app_name }}\n")},
		"broken.tmpl":    {Data: []byte("{{ host }}")},
	}

	got, err := File(src, "README.md.tmpl", map[string]string{"app_name": "acme"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "# acme\n" {
		t.Errorf("got %q", got)
	}

	_, err = File(src, "missing.tmpl", nil)
	if !errors.Is(err, failure.ErrTemplateNotFound) {
		t.Errorf("expected TemplateNotFound, got %v", err)
	}

	_, err = File(src, "broken.tmpl", nil)
	fe, ok := failure.As(err)
	if !ok || fe.Kind != failure.KindUnresolvedPlaceholder {
		t.Fatalf("expected UnresolvedPlaceholder, got %v", err)
	}
	if fe.Path != "broken.tmpl" {
		t.Errorf("Path = %q, want broken.tmpl", fe.Path)
	}
}

func TestValidName(t *testing.T) {
	for name, want := range map[string]bool{
		"app_name": true,
		"Host2":    true,
		"_x":       true,
		"2x":       false,
		"app-name": false,
		"":         false,
	} {
		if got := ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, want %v", name, got, want)
		}
	}
}
