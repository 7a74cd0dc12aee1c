package api

import (
	"path/filepath"
	"time"
)

const (
	DefaultTemplatesDir = "templates"
	DefaultFileInclude  = "**/*"
	KeepFilename        = ".keep"

	StepTypeCopy         = "copy"
	StepTypeRemove       = "remove"
	StepTypeRender       = "render"
	StepTypeInjectAfter  = "inject-after"
	StepTypeInjectBefore = "inject-before"
	StepTypeGenerator    = "generator"
	StepTypeShell        = "shell"
	StepTypeDirectory    = "directory"
	StepTypeCreate       = "create"
	StepTypePrepend      = "prepend"
	StepTypeAppend       = "append"
	StepTypeReplace      = "replace"
	StepTypeTree         = "tree"
	StepTypeMessage      = "message"
)

// Recipe is the recipe YAML configuration format.
type Recipe struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Templates is the source tree for copy, render and tree steps, relative
	// to the recipe file.
	Templates string `yaml:"templates"`
	// Generator is the host framework's generator command prefix, for
	// example ["bin/rails", "generate"].
	Generator     []string          `yaml:"generator"`
	Substitutions map[string]string `yaml:"substitutions"`
	Steps         []StepConfig      `yaml:"steps"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a recipe. Which fields are
// required depends on Type.
type StepConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	Source  string `yaml:"source,omitempty"`
	Dest    string `yaml:"dest,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Anchor  string `yaml:"anchor,omitempty"`
	Payload string `yaml:"payload,omitempty"`
	Content string `yaml:"content,omitempty"`

	Pattern     string `yaml:"pattern,omitempty"`
	Replacement string `yaml:"replacement,omitempty"`

	Generator string   `yaml:"generator,omitempty"`
	Args      []string `yaml:"args,omitempty"`
	Command   string   `yaml:"command,omitempty"`

	Text string `yaml:"text,omitempty"`

	Files         FileFilter        `yaml:"files,omitempty"`
	Substitutions map[string]string `yaml:"substitutions,omitempty"`

	// Render passes payload or content through the template renderer.
	Render bool `yaml:"render,omitempty"`
	// Force overwrites an existing destination with different content.
	Force bool `yaml:"force,omitempty"`
	// MissingOK turns a remove of a missing path into a skip.
	MissingOK bool `yaml:"missingOk,omitempty"`
	// Keep controls the .keep marker of directory steps (default true).
	Keep *bool `yaml:"keep,omitempty"`

	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// FileFilter defines include/exclude glob patterns.
type FileFilter struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// TemplatesPath returns the absolute source tree directory of the recipe.
func (r *Recipe) TemplatesPath() string {
	dir := r.Templates
	if dir == "" {
		dir = DefaultTemplatesDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(r.Dir, dir)
}

// InstancesConfig lists several targets one recipe is applied to.
type InstancesConfig struct {
	Instances []Instance `yaml:"instances"`
}

// Instance is one target project with its own substitutions.
type Instance struct {
	Name          string            `yaml:"name"`
	Target        string            `yaml:"target"`
	Substitutions map[string]string `yaml:"substitutions"`
}
