// Package runspec names complete benchmark configurations: which
// scenario to load, how to adapt its instances into prompts, and which
// metrics score the completions.
package runspec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/polyglotai/polybench/internal/adapter"
	"github.com/polyglotai/polybench/internal/scenario"
)

// RunSpec ties a scenario, an adaptation and metrics together under a
// canonical name like "mmlu:subject=anatomy,language=de".
type RunSpec struct {
	Name        string
	Scenario    scenario.Scenario
	Adapter     adapter.Spec
	MetricNames []string
	Groups      []string
}

type builder func(args map[string]string) (*RunSpec, error)

var builders = map[string]builder{
	"mmlu":      buildMMLU,
	"arc":       buildARC,
	"hellaswag": buildHellaSwag,
	"mgsm":      buildMGSM,
}

// Known lists the registered run spec families, sorted.
func Known() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseDescription resolves a description of the form
// "name:key=value,key=value" into a concrete RunSpec.
func ParseDescription(description string) (*RunSpec, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("runspec: empty description")
	}

	name := description
	rawArgs := ""
	if idx := strings.Index(description, ":"); idx >= 0 {
		name = description[:idx]
		rawArgs = description[idx+1:]
	}

	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("runspec: unknown run spec %q (known: %s)", name, strings.Join(Known(), ", "))
	}

	args := map[string]string{}
	if rawArgs != "" {
		for _, pair := range strings.Split(rawArgs, ",") {
			key, value, found := strings.Cut(pair, "=")
			if !found {
				return nil, fmt.Errorf("runspec: malformed argument %q in %q", pair, description)
			}
			args[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return build(args)
}
