package steps

import (
	"errors"
	"strings"
	"testing"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
)

func TestNewStep(t *testing.T) {
	tests := []struct {
		name    string
		cfg     api.StepConfig
		wantErr string
	}{
		{
			name: "copy step",
			cfg:  api.StepConfig{Type: api.StepTypeCopy, Source: "editorconfig", Dest: ".editorconfig"},
		},
		{
			name:    "copy without source",
			cfg:     api.StepConfig{Type: api.StepTypeCopy, Dest: ".editorconfig"},
			wantErr: "source is required",
		},
		{
			name:    "copy with escaping dest",
			cfg:     api.StepConfig{Type: api.StepTypeCopy, Source: "a", Dest: "../a"},
			wantErr: "must be a relative path",
		},
		{
			name:    "copy with absolute dest",
			cfg:     api.StepConfig{Type: api.StepTypeCopy, Source: "a", Dest: "/etc/a"},
			wantErr: "must be a relative path",
		},
		{
			name: "remove step",
			cfg:  api.StepConfig{Type: api.StepTypeRemove, Path: "README.rdoc"},
		},
		{
			name:    "remove root",
			cfg:     api.StepConfig{Type: api.StepTypeRemove, Path: "."},
			wantErr: "path failed",
		},
		{
			name: "render step",
			cfg:  api.StepConfig{Type: api.StepTypeRender, Source: "README.md.tmpl", Dest: "README.md"},
		},
		{
			name:    "render without dest",
			cfg:     api.StepConfig{Type: api.StepTypeRender, Source: "README.md.tmpl"},
			wantErr: "dest is required",
		},
		{
			name: "inject after",
			cfg:  api.StepConfig{Type: api.StepTypeInjectAfter, Path: "config/routes.rb", Anchor: "do", Payload: "x"},
		},
		{
			name:    "inject without anchor",
			cfg:     api.StepConfig{Type: api.StepTypeInjectBefore, Path: "config/routes.rb", Payload: "x"},
			wantErr: "anchor is required",
		},
		{
			name:    "inject without anything",
			cfg:     api.StepConfig{Type: api.StepTypeInjectBefore},
			wantErr: "path is required; anchor is required; payload is required",
		},
		{
			name: "generator step",
			cfg:  api.StepConfig{Type: api.StepTypeGenerator, Generator: "rspec:install"},
		},
		{
			name:    "generator without name",
			cfg:     api.StepConfig{Type: api.StepTypeGenerator},
			wantErr: "generator is required",
		},
		{
			name: "shell step",
			cfg:  api.StepConfig{Type: api.StepTypeShell, Command: "capify ."},
		},
		{
			name:    "shell without command",
			cfg:     api.StepConfig{Type: api.StepTypeShell},
			wantErr: "command is required",
		},
		{
			name: "directory step",
			cfg:  api.StepConfig{Type: api.StepTypeDirectory, Path: "spec/support"},
		},
		{
			name: "create step",
			cfg:  api.StepConfig{Type: api.StepTypeCreate, Dest: "lib/x.rb", Content: "x"},
		},
		{
			name:    "create without content",
			cfg:     api.StepConfig{Type: api.StepTypeCreate, Dest: "lib/x.rb"},
			wantErr: "content is required",
		},
		{
			name: "prepend step",
			cfg:  api.StepConfig{Type: api.StepTypePrepend, Path: "a", Payload: "x"},
		},
		{
			name: "append step",
			cfg:  api.StepConfig{Type: api.StepTypeAppend, Path: "a", Payload: "x"},
		},
		{
			name: "replace step",
			cfg:  api.StepConfig{Type: api.StepTypeReplace, Path: "a", Pattern: `:password`, Replacement: ":password, :password_confirmation"},
		},
		{
			name:    "replace with invalid pattern",
			cfg:     api.StepConfig{Type: api.StepTypeReplace, Path: "a", Pattern: `(`},
			wantErr: "not a valid regular expression",
		},
		{
			name: "tree step",
			cfg:  api.StepConfig{Type: api.StepTypeTree, Source: "app/views/devise", Dest: "app/views/devise"},
		},
		{
			name:    "tree with empty include pattern",
			cfg:     api.StepConfig{Type: api.StepTypeTree, Source: "a", Dest: "b", Files: api.FileFilter{Include: []string{""}}},
			wantErr: "include[0]",
		},
		{
			name: "message step",
			cfg:  api.StepConfig{Type: api.StepTypeMessage, Text: "Add time_zone to User model"},
		},
		{
			name:    "unknown type",
			cfg:     api.StepConfig{Type: "unknown"},
			wantErr: "unknown step type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Name = "s"
			step, err := NewStep(tt.cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if step.Name() != "s" || step.Type() != tt.cfg.Type {
					t.Errorf("unexpected name/type %q/%q", step.Name(), step.Type())
				}
				if step.Describe() == "" {
					t.Error("expected non-empty description")
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, failure.ErrConfiguration) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
