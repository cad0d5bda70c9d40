package adapter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/polyglotai/polybench/internal/scenario"
)

// Method selects how instances become prompts.
type Method string

const (
	// MethodMultipleChoiceJoint shows all choices in one prompt and asks
	// for the answer letter.
	MethodMultipleChoiceJoint Method = "multiple_choice_joint"
	// MethodGeneration asks for free-form text.
	MethodGeneration Method = "generation"
)

// Spec describes how eval instances are turned into prompts and which
// sampling parameters accompany them.
type Spec struct {
	Method            Method
	Instructions      string
	InputNoun         string
	OutputNoun        string
	MaxTrainInstances int
	MaxTokens         int
	Temperature       float64
	StopSequences     []string
}

// NewMultipleChoiceSpec builds the standard joint multiple-choice
// adaptation: few-shot blocks with lettered choices, a single-letter
// answer, deterministic sampling.
func NewMultipleChoiceSpec(instructions, inputNoun, outputNoun string, maxTrainInstances int) Spec {
	return Spec{
		Method:            MethodMultipleChoiceJoint,
		Instructions:      strings.TrimSpace(instructions),
		InputNoun:         strings.TrimSpace(inputNoun),
		OutputNoun:        strings.TrimSpace(outputNoun),
		MaxTrainInstances: maxTrainInstances,
		MaxTokens:         5,
		Temperature:       0,
		StopSequences:     []string{"\n"},
	}
}

// NewGenerationSpec builds a free-form generation adaptation.
func NewGenerationSpec(inputNoun, outputNoun string, maxTrainInstances, maxTokens int, stopSequences []string) Spec {
	return Spec{
		Method:            MethodGeneration,
		InputNoun:         strings.TrimSpace(inputNoun),
		OutputNoun:        strings.TrimSpace(outputNoun),
		MaxTrainInstances: maxTrainInstances,
		MaxTokens:         maxTokens,
		Temperature:       0,
		StopSequences:     stopSequences,
	}
}

// ChoiceLabel returns the letter label for a choice index.
func ChoiceLabel(i int) string {
	return string(rune('A' + i))
}

// Prompt renders the few-shot prompt for an eval instance. Train
// instances beyond MaxTrainInstances are ignored.
func (s *Spec) Prompt(train []scenario.Instance, eval scenario.Instance) (string, error) {
	if s == nil {
		return "", errors.New("adapter: nil spec")
	}

	shots := train
	if s.MaxTrainInstances >= 0 && len(shots) > s.MaxTrainInstances {
		shots = shots[:s.MaxTrainInstances]
	}

	var sb strings.Builder
	if s.Instructions != "" {
		sb.WriteString(s.Instructions)
		sb.WriteString("\n\n")
	}

	for _, inst := range shots {
		block, err := s.block(inst, true)
		if err != nil {
			return "", err
		}
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	block, err := s.block(eval, false)
	if err != nil {
		return "", err
	}
	sb.WriteString(block)
	return sb.String(), nil
}

func (s *Spec) block(inst scenario.Instance, withAnswer bool) (string, error) {
	var sb strings.Builder
	if s.InputNoun != "" {
		sb.WriteString(s.InputNoun)
		sb.WriteString(": ")
	}
	sb.WriteString(strings.TrimSpace(inst.Input.Text))
	sb.WriteString("\n")

	switch s.Method {
	case MethodMultipleChoiceJoint:
		for i, ref := range inst.References {
			sb.WriteString(ChoiceLabel(i))
			sb.WriteString(". ")
			sb.WriteString(strings.TrimSpace(ref.Output.Text))
			sb.WriteString("\n")
		}
	case MethodGeneration:
		// No choices to render.
	default:
		return "", fmt.Errorf("adapter: unknown method %q", s.Method)
	}

	if s.OutputNoun != "" {
		sb.WriteString(s.OutputNoun)
		sb.WriteString(":")
	}
	if withAnswer {
		answers, err := s.ExpectedAnswers(inst)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ")
		sb.WriteString(answers[0])
	}
	return sb.String(), nil
}

// ExpectedAnswers returns the strings a completion is scored against:
// the correct letter for multiple choice, the correct reference text
// for generation.
func (s *Spec) ExpectedAnswers(inst scenario.Instance) ([]string, error) {
	if s == nil {
		return nil, errors.New("adapter: nil spec")
	}

	switch s.Method {
	case MethodMultipleChoiceJoint:
		for i, ref := range inst.References {
			if ref.IsCorrect() {
				return []string{ChoiceLabel(i)}, nil
			}
		}
		return nil, fmt.Errorf("adapter: instance %q has no correct reference", inst.ID)
	case MethodGeneration:
		ref, ok := inst.CorrectReference()
		if !ok {
			return nil, fmt.Errorf("adapter: instance %q has no correct reference", inst.ID)
		}
		return []string{ref.Output.Text}, nil
	default:
		return nil, fmt.Errorf("adapter: unknown method %q", s.Method)
	}
}
