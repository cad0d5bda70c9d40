package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeDataFile(t *testing.T, name, language, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("POLYBENCH_DATA_DIR", dir)
	path := filepath.Join(dir, name+"_"+language+".jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestMMLUScenario_LoadsJSONL(t *testing.T) {
	writeDataFile(t, "mmlu", "de", `
{"question": "F1?", "a": "w", "b": "x", "c": "y", "d": "z", "answer": "C", "subject": "anatomy"}
{"question": "F2?", "a": "w", "b": "x", "c": "y", "d": "z", "answer": "A", "subject": "virology"}
`)

	s := &MMLUScenario{Subject: "anatomy", Language: "de"}
	instances, err := s.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("instances: got %d want 1 (other subject filtered)", len(instances))
	}

	inst := instances[0]
	if inst.Input.Text != "F1?" {
		t.Fatalf("input: got %q", inst.Input.Text)
	}
	if len(inst.References) != 4 {
		t.Fatalf("references: got %d want 4", len(inst.References))
	}
	ref, ok := inst.CorrectReference()
	if !ok {
		t.Fatalf("no correct reference")
	}
	if ref.Output.Text != "y" {
		t.Fatalf("correct reference: got %q want %q", ref.Output.Text, "y")
	}
	if inst.Split != TestSplit {
		t.Fatalf("split: got %q want %q", inst.Split, TestSplit)
	}
}

func TestMMLUScenario_InvalidAnswerLetter(t *testing.T) {
	writeDataFile(t, "mmlu", "de", `{"question": "F?", "a": "w", "b": "x", "c": "y", "d": "z", "answer": "E", "subject": "anatomy"}`)

	s := &MMLUScenario{Subject: "anatomy", Language: "de"}
	if _, err := s.Instances(context.Background()); err == nil {
		t.Fatalf("out-of-range answer letter: expected error")
	}
}

func TestMMLUScenario_FallsBackToSample(t *testing.T) {
	t.Setenv("POLYBENCH_DATA_DIR", t.TempDir())

	s := &MMLUScenario{Subject: "anatomy", Language: "de"}
	instances, err := s.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) == 0 {
		t.Fatalf("expected built-in sample instances")
	}
}

func TestMMLUScenario_Validation(t *testing.T) {
	s := &MMLUScenario{Language: "de"}
	if _, err := s.Instances(context.Background()); err == nil {
		t.Fatalf("missing subject: expected error")
	}
	s = &MMLUScenario{Subject: "anatomy"}
	if _, err := s.Instances(context.Background()); err == nil {
		t.Fatalf("missing language: expected error")
	}
}

func TestARCScenario_SkipsFiveOptionRows(t *testing.T) {
	writeDataFile(t, "arc", "de", `
{"instruction": "F1?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "answer": "B", "split": "train"}
{"instruction": "F2?", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "option_e": "e", "answer": "E"}
`)

	s := &ARCScenario{Language: "de"}
	instances, err := s.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("instances: got %d want 1", len(instances))
	}
	if instances[0].Split != TrainSplit {
		t.Fatalf("split: got %q want %q", instances[0].Split, TrainSplit)
	}
}

func TestHellaSwagScenario_LabelSelectsEnding(t *testing.T) {
	writeDataFile(t, "hellaswag", "de", `{"ctx": "Kontext.", "endings": ["e0", "e1", "e2", "e3"], "label": "2"}`)

	s := &HellaSwagScenario{Language: "de"}
	instances, err := s.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("instances: got %d want 1", len(instances))
	}
	ref, ok := instances[0].CorrectReference()
	if !ok || ref.Output.Text != "e2" {
		t.Fatalf("correct reference: ok=%v text=%q", ok, ref.Output.Text)
	}
}

func TestHellaSwagScenario_InvalidLabel(t *testing.T) {
	writeDataFile(t, "hellaswag", "de", `{"ctx": "Kontext.", "endings": ["e0", "e1"], "label": "9"}`)

	s := &HellaSwagScenario{Language: "de"}
	if _, err := s.Instances(context.Background()); err == nil {
		t.Fatalf("out-of-range label: expected error")
	}
}

func TestMGSMScenario_TrainReferences(t *testing.T) {
	writeDataFile(t, "mgsm", "de", `
{"question": "Q1?", "answer": "Rechnung. Die Antwort ist 5.", "answer_number": "5", "split": "train"}
{"question": "Q2?", "answer_number": "7", "split": "test"}
`)

	// Without chain-of-thought prompting, even train rows carry only the
	// localized final-answer form.
	s := &MGSMScenario{Language: "de"}
	instances, err := s.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("instances: got %d want 2", len(instances))
	}
	ref, _ := instances[0].CorrectReference()
	if got, want := ref.Output.Text, "Die Antwort ist 5."; got != want {
		t.Fatalf("train reference: got %q want %q", got, want)
	}

	s = &MGSMScenario{Language: "de", UseCoTPrompt: true}
	instances, err = s.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances (cot): %v", err)
	}
	ref, _ = instances[0].CorrectReference()
	if got, want := ref.Output.Text, "Rechnung. Die Antwort ist 5."; got != want {
		t.Fatalf("cot train reference: got %q want %q", got, want)
	}
	ref, _ = instances[1].CorrectReference()
	if got, want := ref.Output.Text, "Die Antwort ist 7."; got != want {
		t.Fatalf("test reference: got %q want %q", got, want)
	}
}

func TestNormalizeSplit(t *testing.T) {
	cases := map[string]string{
		"train":      TrainSplit,
		"Validation": ValidSplit,
		"val":        ValidSplit,
		"test":       TestSplit,
		"":           TestSplit,
		"other":      TestSplit,
	}
	for in, want := range cases {
		if got := normalizeSplit(in); got != want {
			t.Fatalf("normalizeSplit(%q): got %q want %q", in, got, want)
		}
	}
}
