package runspec

import (
	"strings"
	"testing"

	"github.com/polyglotai/polybench/internal/adapter"
	"github.com/polyglotai/polybench/internal/metric"
	"github.com/polyglotai/polybench/internal/scenario"
)

func TestParseDescription_MMLU(t *testing.T) {
	spec, err := ParseDescription("mmlu:subject=anatomy,language=de")
	if err != nil {
		t.Fatalf("ParseDescription: %v", err)
	}
	if spec.Name != "mmlu:subject=anatomy,language=de" {
		t.Fatalf("name: got %q", spec.Name)
	}

	s, ok := spec.Scenario.(*scenario.MMLUScenario)
	if !ok {
		t.Fatalf("scenario type: %T", spec.Scenario)
	}
	if s.Subject != "anatomy" || s.Language != "de" {
		t.Fatalf("scenario: %+v", s)
	}

	if spec.Adapter.Method != adapter.MethodMultipleChoiceJoint {
		t.Fatalf("method: got %q", spec.Adapter.Method)
	}
	if spec.Adapter.MaxTrainInstances != 5 {
		t.Fatalf("max train: got %d want 5", spec.Adapter.MaxTrainInstances)
	}
	// The subject appears translated inside the German instructions.
	if !strings.Contains(spec.Adapter.Instructions, "Anatomie") {
		t.Fatalf("instructions missing translated subject: %q", spec.Adapter.Instructions)
	}
	if spec.Adapter.InputNoun != "Frage" || spec.Adapter.OutputNoun != "Antwort" {
		t.Fatalf("nouns: %q/%q", spec.Adapter.InputNoun, spec.Adapter.OutputNoun)
	}
}

func TestParseDescription_Errors(t *testing.T) {
	cases := []string{
		"",
		"unknown",
		"mmlu:language=de",            // missing subject
		"mmlu:subject=anatomy,badarg", // malformed pair
		"mmlu:subject=anatomy,language=xx",
		"mgsm:language=xx",
		"mgsm:language=de,use_cot=maybe",
	}
	for _, desc := range cases {
		if _, err := ParseDescription(desc); err == nil {
			t.Fatalf("ParseDescription(%q): expected error", desc)
		}
	}
}

func TestHellaSwagMultilingual_ZeroShot(t *testing.T) {
	spec, err := HellaSwagMultilingual("de")
	if err != nil {
		t.Fatalf("HellaSwagMultilingual: %v", err)
	}
	if spec.Adapter.MaxTrainInstances != 0 {
		t.Fatalf("max train: got %d want 0", spec.Adapter.MaxTrainInstances)
	}
}

func TestMGSM_GenerationSpec(t *testing.T) {
	spec, err := MGSM("de", true, 8)
	if err != nil {
		t.Fatalf("MGSM: %v", err)
	}
	if spec.Name != "mgsm:language=de,use_cot=true" {
		t.Fatalf("name: got %q", spec.Name)
	}
	if spec.Adapter.Method != adapter.MethodGeneration {
		t.Fatalf("method: got %q", spec.Adapter.Method)
	}
	if spec.Adapter.MaxTokens != 400 {
		t.Fatalf("max tokens: got %d want 400", spec.Adapter.MaxTokens)
	}
	if len(spec.Adapter.StopSequences) != 1 || spec.Adapter.StopSequences[0] != "\n\n" {
		t.Fatalf("stop sequences: %q", spec.Adapter.StopSequences)
	}

	found := false
	for _, name := range spec.MetricNames {
		if name == metric.FinalNumberExactMatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("metrics missing %s: %v", metric.FinalNumberExactMatch, spec.MetricNames)
	}
}

func TestKnown(t *testing.T) {
	known := Known()
	if len(known) != 4 {
		t.Fatalf("known specs: %v", known)
	}
	for i := 1; i < len(known); i++ {
		if known[i-1] >= known[i] {
			t.Fatalf("known specs not sorted: %v", known)
		}
	}
}
