package api

import (
	"fmt"
	"slices"
	"strings"

	"github.com/systemstart/many-scaffold/pkg/render"
)

var validStepTypes = []string{
	StepTypeCopy,
	StepTypeRemove,
	StepTypeRender,
	StepTypeInjectAfter,
	StepTypeInjectBefore,
	StepTypeGenerator,
	StepTypeShell,
	StepTypeDirectory,
	StepTypeCreate,
	StepTypePrepend,
	StepTypeAppend,
	StepTypeReplace,
	StepTypeTree,
	StepTypeMessage,
}

// ValidStepType reports whether t is a known step type.
func ValidStepType(t string) bool {
	return slices.Contains(validStepTypes, t)
}

// Validate checks the recipe structure. Per-step parameters are checked when
// the steps are built.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("recipe has no steps")
	}

	if err := validateSubstitutionNames(r.Substitutions); err != nil {
		return err
	}

	names := make(map[string]int)

	for i, step := range r.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if !ValidStepType(step.Type) {
			return fmt.Errorf("step %q: unknown type %q (valid: %s)", step.Name, step.Type, strings.Join(validStepTypes, ", "))
		}

		if step.Type == StepTypeGenerator && len(r.Generator) == 0 {
			return fmt.Errorf("step %q: generator steps require a recipe-level generator command", step.Name)
		}

		if err := validateSubstitutionNames(step.Substitutions); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return nil
}

func validateSubstitutionNames(subs map[string]string) error {
	for k := range subs {
		if !render.ValidName(k) {
			return fmt.Errorf("substitution name %q is not an identifier", k)
		}
	}
	return nil
}
