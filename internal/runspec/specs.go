package runspec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polyglotai/polybench/internal/adapter"
	"github.com/polyglotai/polybench/internal/metric"
	"github.com/polyglotai/polybench/internal/scenario"
)

func argOr(args map[string]string, key, fallback string) string {
	if v, ok := args[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func localized(table map[string]string, language, what string) (string, error) {
	v, ok := table[language]
	if !ok {
		return "", fmt.Errorf("runspec: no %s for language %q", what, language)
	}
	return v, nil
}

// MMLUMultilingual evaluates one translated MMLU subject with the
// standard 5-shot joint multiple-choice adaptation.
func MMLUMultilingual(subject, language string) (*RunSpec, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("runspec: mmlu requires a subject")
	}

	instructions, err := localized(scenario.MMLUInstructions, language, "mmlu instructions")
	if err != nil {
		return nil, err
	}
	inputNoun, err := localized(scenario.MMLUInputNouns, language, "mmlu input noun")
	if err != nil {
		return nil, err
	}
	outputNoun, err := localized(scenario.MMLUOutputNouns, language, "mmlu output noun")
	if err != nil {
		return nil, err
	}

	displaySubject := subject
	if language == "de" {
		if translated, ok := scenario.SubjectTranslationsDE[subject]; ok {
			displaySubject = translated
		}
	}

	return &RunSpec{
		Name:        fmt.Sprintf("mmlu:subject=%s,language=%s", subject, language),
		Scenario:    &scenario.MMLUScenario{Subject: subject, Language: language},
		Adapter:     adapter.NewMultipleChoiceSpec(fmt.Sprintf(instructions, displaySubject), inputNoun, outputNoun, 5),
		MetricNames: []string{metric.ExactMatch, metric.QuasiExactMatch},
		Groups:      []string{"mmlu", "mmlu_" + language},
	}, nil
}

// ARCMultilingual evaluates the translated AI2 Reasoning Challenge.
func ARCMultilingual(language string) (*RunSpec, error) {
	instructions, err := localized(scenario.ARCInstructions, language, "arc instructions")
	if err != nil {
		return nil, err
	}
	inputNoun, err := localized(scenario.ARCInputNouns, language, "arc input noun")
	if err != nil {
		return nil, err
	}
	outputNoun, err := localized(scenario.ARCOutputNouns, language, "arc output noun")
	if err != nil {
		return nil, err
	}

	return &RunSpec{
		Name:        fmt.Sprintf("arc:language=%s", language),
		Scenario:    &scenario.ARCScenario{Language: language},
		Adapter:     adapter.NewMultipleChoiceSpec(instructions, inputNoun, outputNoun, 5),
		MetricNames: []string{metric.ExactMatch, metric.QuasiExactMatch},
		Groups:      []string{"arc", "arc_" + language},
	}, nil
}

// HellaSwagMultilingual evaluates the translated HellaSwag completion
// task zero-shot, since the dataset ships no train split.
func HellaSwagMultilingual(language string) (*RunSpec, error) {
	instructions, err := localized(scenario.HellaSwagInstructions, language, "hellaswag instructions")
	if err != nil {
		return nil, err
	}
	inputNoun, err := localized(scenario.HellaSwagInputNouns, language, "hellaswag input noun")
	if err != nil {
		return nil, err
	}
	outputNoun, err := localized(scenario.HellaSwagOutputNouns, language, "hellaswag output noun")
	if err != nil {
		return nil, err
	}

	return &RunSpec{
		Name:        fmt.Sprintf("hellaswag:language=%s", language),
		Scenario:    &scenario.HellaSwagScenario{Language: language},
		Adapter:     adapter.NewMultipleChoiceSpec(instructions, inputNoun, outputNoun, 0),
		MetricNames: []string{metric.ExactMatch, metric.QuasiExactMatch},
		Groups:      []string{"hellaswag", "hellaswag_" + language},
	}, nil
}

// MGSM evaluates grade-school math word problems as free-form
// generation, scored on the final number.
func MGSM(language string, useCoT bool, maxTrainInstances int) (*RunSpec, error) {
	if _, ok := scenario.MGSMAnswerPrefix[language]; !ok {
		return nil, fmt.Errorf("runspec: no mgsm answer prefix for language %q", language)
	}

	name := fmt.Sprintf("mgsm:language=%s", language)
	if useCoT {
		name += ",use_cot=true"
	}

	return &RunSpec{
		Name:        name,
		Scenario:    &scenario.MGSMScenario{Language: language, UseCoTPrompt: useCoT},
		Adapter:     adapter.NewGenerationSpec("Q", "A", maxTrainInstances, 400, []string{"\n\n"}),
		MetricNames: []string{metric.ExactMatch, metric.FinalNumberExactMatch},
		Groups:      []string{"mgsm", "mgsm_" + language},
	}, nil
}

func buildMMLU(args map[string]string) (*RunSpec, error) {
	return MMLUMultilingual(argOr(args, "subject", ""), argOr(args, "language", "en"))
}

func buildARC(args map[string]string) (*RunSpec, error) {
	return ARCMultilingual(argOr(args, "language", "en"))
}

func buildHellaSwag(args map[string]string) (*RunSpec, error) {
	return HellaSwagMultilingual(argOr(args, "language", "en"))
}

func buildMGSM(args map[string]string) (*RunSpec, error) {
	useCoT, err := strconv.ParseBool(argOr(args, "use_cot", "false"))
	if err != nil {
		return nil, fmt.Errorf("runspec: invalid use_cot value: %w", err)
	}
	maxTrain, err := strconv.Atoi(argOr(args, "max_train", "8"))
	if err != nil {
		return nil, fmt.Errorf("runspec: invalid max_train value: %w", err)
	}
	return MGSM(argOr(args, "language", "en"), useCoT, maxTrain)
}
