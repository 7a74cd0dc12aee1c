package api

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRecipe reads a recipe file, sets Dir/FilePath, names unnamed steps and
// validates it.
func LoadRecipe(filename string) (*Recipe, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	r.FilePath = absPath
	r.Dir = filepath.Dir(absPath)

	r.NameSteps()

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating recipe %s: %w", filename, err)
	}

	return &r, nil
}

// NameSteps gives every unnamed step the name "<type>-<position>".
func (r *Recipe) NameSteps() {
	for i := range r.Steps {
		if r.Steps[i].Name == "" {
			r.Steps[i].Name = fmt.Sprintf("%s-%d", r.Steps[i].Type, i+1)
		}
	}
}
