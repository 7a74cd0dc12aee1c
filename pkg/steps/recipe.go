package steps

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
)

// Recipe is an ordered, immutable sequence of steps. Order as authored is
// order executed; nothing is reordered or deduplicated.
type Recipe struct {
	name          string
	templates     string
	generator     []string
	substitutions map[string]string
	steps         []Step
}

// RecipeOption configures a Recipe built with NewRecipe.
type RecipeOption func(*Recipe)

// WithGenerator sets the generator command prefix.
func WithGenerator(command ...string) RecipeOption {
	return func(r *Recipe) { r.generator = slices.Clone(command) }
}

// WithSubstitutions sets the recipe-level substitutions.
func WithSubstitutions(subs map[string]string) RecipeOption {
	return func(r *Recipe) { r.substitutions = maps.Clone(subs) }
}

// WithTemplates sets the template source directory.
func WithTemplates(dir string) RecipeOption {
	return func(r *Recipe) { r.templates = dir }
}

// NewRecipe builds a recipe from already constructed steps.
func NewRecipe(name string, steps []Step, opts ...RecipeOption) *Recipe {
	r := &Recipe{name: name, steps: slices.Clone(steps)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile builds every step of cfg. The first invalid step aborts with a
// failure.KindConfiguration error.
func Compile(cfg *api.Recipe) (*Recipe, error) {
	steps := make([]Step, 0, len(cfg.Steps))
	for i, sc := range cfg.Steps {
		s, err := NewStep(sc)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, s)
	}

	name := cfg.Name
	if name == "" {
		name = cfg.FilePath
	}

	return NewRecipe(name, steps,
		WithGenerator(cfg.Generator...),
		WithSubstitutions(cfg.Substitutions),
		WithTemplates(cfg.TemplatesPath()),
	), nil
}

func (r *Recipe) Name() string      { return r.name }
func (r *Recipe) Templates() string { return r.templates }
func (r *Recipe) Len() int          { return len(r.steps) }

// Generator returns a copy of the generator command prefix.
func (r *Recipe) Generator() []string { return slices.Clone(r.generator) }

// Substitutions returns a copy of the recipe-level substitutions.
func (r *Recipe) Substitutions() map[string]string { return maps.Clone(r.substitutions) }

// All yields the steps with their position, in order.
func (r *Recipe) All() iter.Seq2[int, Step] {
	return slices.All(r.steps)
}

// Validate checks recipe-level requirements the individual steps cannot.
func (r *Recipe) Validate() error {
	for _, s := range r.steps {
		if s.Type() == api.StepTypeGenerator && len(r.generator) == 0 {
			return failure.Newf(failure.KindConfiguration, "step %q: no generator command configured", s.Name())
		}
	}
	return nil
}
