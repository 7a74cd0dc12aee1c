package processing

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/systemstart/many-scaffold/pkg/failure"
	"github.com/systemstart/many-scaffold/pkg/render"
)

// EnvPrefix marks environment variables that become substitutions.
const EnvPrefix = "SCAFFOLD_"

// LoadSubstitutionsFile reads a flat mapping of substitutions from a YAML
// file, or a TOML file when the name ends in .toml. Scalar values of any type
// are converted to their string form.
func LoadSubstitutionsFile(filename string) (map[string]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading substitutions file: %w", err)
	}

	var raw map[string]any
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing substitutions file: %w", err)
	}

	subs := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			return nil, failure.Newf(failure.KindConfiguration, "substitution %q: value must be a scalar", k)
		case nil:
			subs[k] = ""
		default:
			subs[k] = fmt.Sprint(v)
		}
	}

	if err := checkNames(subs); err != nil {
		return nil, fmt.Errorf("substitutions file %s: %w", filename, err)
	}
	return subs, nil
}

// ParseAssignments turns key=value pairs into substitutions.
func ParseAssignments(pairs []string) (map[string]string, error) {
	subs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, failure.Newf(failure.KindConfiguration, "substitution %q: expected key=value", p)
		}
		subs[strings.TrimSpace(k)] = v
	}
	if err := checkNames(subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// EnvSubstitutions collects SCAFFOLD_* entries of environ (as returned by
// os.Environ). SCAFFOLD_APP_NAME becomes app_name.
func EnvSubstitutions(environ []string) map[string]string {
	subs := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
		if render.ValidName(name) {
			subs[name] = v
		}
	}
	return subs
}

// MergeSubstitutions merges layers left to right; later layers win.
func MergeSubstitutions(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, l := range layers {
		maps.Copy(merged, l)
	}
	return merged
}

func checkNames(subs map[string]string) error {
	for k := range subs {
		if !render.ValidName(k) {
			return failure.Newf(failure.KindConfiguration, "invalid substitution name %q", k)
		}
	}
	return nil
}
