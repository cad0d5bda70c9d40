package adapter

import (
	"strings"
	"testing"

	"github.com/polyglotai/polybench/internal/scenario"
)

func mcInstance(id, question string, choices []string, correct int) scenario.Instance {
	refs := make([]scenario.Reference, 0, len(choices))
	for i, choice := range choices {
		ref := scenario.Reference{Output: scenario.Output{Text: choice}}
		if i == correct {
			ref.Tags = []string{scenario.CorrectTag}
		}
		refs = append(refs, ref)
	}
	return scenario.Instance{ID: id, Input: scenario.Input{Text: question}, References: refs}
}

func TestMultipleChoicePrompt(t *testing.T) {
	spec := NewMultipleChoiceSpec("Beantworten Sie die Fragen.", "Frage", "Antwort", 5)

	train := []scenario.Instance{
		mcInstance("t1", "Was ist 1+1?", []string{"1", "2", "3", "4"}, 1),
	}
	eval := mcInstance("e1", "Was ist 2+2?", []string{"2", "3", "4", "5"}, 2)

	prompt, err := spec.Prompt(train, eval)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}

	want := "Beantworten Sie die Fragen.\n\n" +
		"Frage: Was ist 1+1?\nA. 1\nB. 2\nC. 3\nD. 4\nAntwort: B\n\n" +
		"Frage: Was ist 2+2?\nA. 2\nB. 3\nC. 4\nD. 5\nAntwort:"
	if prompt != want {
		t.Fatalf("prompt:\ngot:\n%q\nwant:\n%q", prompt, want)
	}
}

func TestMultipleChoicePrompt_TrainLimit(t *testing.T) {
	spec := NewMultipleChoiceSpec("", "Q", "A", 1)

	train := []scenario.Instance{
		mcInstance("t1", "first?", []string{"a", "b"}, 0),
		mcInstance("t2", "second?", []string{"a", "b"}, 0),
	}
	eval := mcInstance("e1", "eval?", []string{"a", "b"}, 1)

	prompt, err := spec.Prompt(train, eval)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if strings.Contains(prompt, "second?") {
		t.Fatalf("train instance beyond the limit leaked into the prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "first?") {
		t.Fatalf("expected first train instance in prompt:\n%s", prompt)
	}
}

func TestZeroShotPromptHasNoTrainBlocks(t *testing.T) {
	spec := NewMultipleChoiceSpec("Intro.", "Frage", "Antwort", 0)

	train := []scenario.Instance{mcInstance("t1", "train?", []string{"a", "b"}, 0)}
	eval := mcInstance("e1", "eval?", []string{"a", "b"}, 1)

	prompt, err := spec.Prompt(train, eval)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if strings.Contains(prompt, "train?") {
		t.Fatalf("zero-shot prompt contains train block:\n%s", prompt)
	}
}

func TestGenerationPrompt(t *testing.T) {
	spec := NewGenerationSpec("Q", "A", 8, 400, []string{"\n\n"})

	train := []scenario.Instance{{
		ID:    "t1",
		Input: scenario.Input{Text: "2+3?"},
		References: []scenario.Reference{{
			Output: scenario.Output{Text: "Die Antwort ist 5."},
			Tags:   []string{scenario.CorrectTag},
		}},
	}}
	eval := scenario.Instance{
		ID:    "e1",
		Input: scenario.Input{Text: "4+4?"},
		References: []scenario.Reference{{
			Output: scenario.Output{Text: "Die Antwort ist 8."},
			Tags:   []string{scenario.CorrectTag},
		}},
	}

	prompt, err := spec.Prompt(train, eval)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	want := "Q: 2+3?\nA: Die Antwort ist 5.\n\nQ: 4+4?\nA:"
	if prompt != want {
		t.Fatalf("prompt:\ngot:\n%q\nwant:\n%q", prompt, want)
	}
}

func TestExpectedAnswers(t *testing.T) {
	mc := NewMultipleChoiceSpec("", "Q", "A", 0)
	inst := mcInstance("i1", "q?", []string{"w", "x", "y", "z"}, 3)

	answers, err := mc.ExpectedAnswers(inst)
	if err != nil {
		t.Fatalf("ExpectedAnswers mc: %v", err)
	}
	if len(answers) != 1 || answers[0] != "D" {
		t.Fatalf("mc answers: %v", answers)
	}

	gen := NewGenerationSpec("Q", "A", 0, 100, nil)
	genInst := scenario.Instance{
		ID: "i2",
		References: []scenario.Reference{{
			Output: scenario.Output{Text: "Die Antwort ist 7."},
			Tags:   []string{scenario.CorrectTag},
		}},
	}
	answers, err = gen.ExpectedAnswers(genInst)
	if err != nil {
		t.Fatalf("ExpectedAnswers gen: %v", err)
	}
	if len(answers) != 1 || answers[0] != "Die Antwort ist 7." {
		t.Fatalf("gen answers: %v", answers)
	}

	noCorrect := scenario.Instance{ID: "i3", References: []scenario.Reference{{Output: scenario.Output{Text: "x"}}}}
	if _, err := mc.ExpectedAnswers(noCorrect); err == nil {
		t.Fatalf("no correct reference: expected error")
	}
}

func TestChoiceLabel(t *testing.T) {
	if got := ChoiceLabel(0); got != "A" {
		t.Fatalf("ChoiceLabel(0): got %q", got)
	}
	if got := ChoiceLabel(3); got != "D" {
		t.Fatalf("ChoiceLabel(3): got %q", got)
	}
}
