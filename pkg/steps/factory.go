package steps

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/failure"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Paths are slash-separated and must stay inside the root they refer to.
	_ = v.RegisterValidation("localpath", func(fl validator.FieldLevel) bool {
		return fs.ValidPath(fl.Field().String())
	})
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})

	return v
}

// NewStep creates a Step implementation from a StepConfig. Missing or invalid
// parameters fail with failure.KindConfiguration.
func NewStep(cfg api.StepConfig) (Step, error) {
	b := base{name: cfg.Name, typ: cfg.Type, timeout: cfg.Timeout, subs: maps.Clone(cfg.Substitutions)}

	var (
		step   Step
		params any
	)

	switch cfg.Type {
	case api.StepTypeCopy:
		s := newCopyStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeRemove:
		s := newRemoveStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeRender:
		s := newRenderStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeInjectAfter, api.StepTypeInjectBefore:
		s := newInjectStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeGenerator:
		s := newGeneratorStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeShell:
		s := newShellStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeDirectory:
		s := newDirectoryStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeCreate:
		s := newCreateStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypePrepend, api.StepTypeAppend:
		s := newEditStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeReplace:
		s := newReplaceStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeTree:
		s := newTreeStep(b, cfg)
		step, params = s, &s.params
	case api.StepTypeMessage:
		s := newMessageStep(b, cfg)
		step, params = s, &s.params
	default:
		return nil, failure.Newf(failure.KindConfiguration, "unknown step type: %s", cfg.Type)
	}

	if err := validate.Struct(params); err != nil {
		return nil, failure.Wrap(failure.KindConfiguration, fmt.Sprintf("%s step %q", cfg.Type, cfg.Name), describeValidation(err))
	}

	if r, ok := step.(*replaceStep); ok {
		r.pattern = regexp.MustCompile(r.params.Pattern)
	}

	return step, nil
}

// describeValidation turns validator errors into "field: problem" messages.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "localpath":
			msgs = append(msgs, fmt.Sprintf("%s %q must be a relative path inside the tree", fe.Field(), fe.Value()))
		case "regexp":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid regular expression", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
