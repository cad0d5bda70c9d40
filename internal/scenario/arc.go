package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ARCInstructions = map[string]string{
		"de": "Folgende sind Multiple-Choice-Fragen (mit Antworten)",
		"en": "The following are multiple-choice questions (with answers)",
	}
	ARCInputNouns = map[string]string{
		"de": "Frage",
		"en": "Question",
	}
	ARCOutputNouns = map[string]string{
		"de": "Antwort",
		"en": "Answer",
	}
)

// ARCScenario loads the machine-translated AI2 Reasoning Challenge
// dataset (alexandrainst/m_arc) for one language.
type ARCScenario struct {
	Language string
}

type arcRow struct {
	Instruction string `json:"instruction"`
	OptionA     string `json:"option_a"`
	OptionB     string `json:"option_b"`
	OptionC     string `json:"option_c"`
	OptionD     string `json:"option_d"`
	OptionE     string `json:"option_e,omitempty"`
	Answer      string `json:"answer"`
	Split       string `json:"split,omitempty"`
}

func (s *ARCScenario) Name() string { return "arc_multilingual" }

func (s *ARCScenario) Description() string {
	return "AI2 Reasoning Challenge (ARC), machine-translated"
}

func (s *ARCScenario) Tags() []string { return []string{"knowledge", "multiple_choice"} }

func (s *ARCScenario) Instances(ctx context.Context) ([]Instance, error) {
	if ctx == nil {
		return nil, errors.New("arc: nil context")
	}
	language := strings.TrimSpace(s.Language)
	if language == "" {
		return nil, errors.New("arc: missing language")
	}

	path := dataPath("arc", language)
	rows, err := readJSONL[arcRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			rows = defaultARCSample()
		} else {
			return nil, fmt.Errorf("arc: load %q: %w", path, err)
		}
	}

	out := make([]Instance, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		// Rows with a fifth option don't fit the four-choice format.
		if strings.TrimSpace(row.OptionE) != "" {
			continue
		}

		question := strings.TrimSpace(row.Instruction)
		if question == "" {
			continue
		}

		refs, err := lettersToReferences([]string{row.OptionA, row.OptionB, row.OptionC, row.OptionD}, row.Answer)
		if err != nil {
			return nil, fmt.Errorf("arc: row %d: %w", i+1, err)
		}

		out = append(out, Instance{
			ID:         fmt.Sprintf("arc-%s-%d", language, i+1),
			Input:      Input{Text: question},
			References: refs,
			Split:      normalizeSplit(row.Split),
		})
	}
	return out, nil
}

func defaultARCSample() []arcRow {
	return []arcRow{
		{
			Instruction: "Welche Eigenschaft eines Minerals lässt sich durch Kratzen bestimmen?",
			OptionA:     "Glanz",
			OptionB:     "Härte",
			OptionC:     "Farbe",
			OptionD:     "Dichte",
			Answer:      "B",
			Split:       "train",
		},
		{
			Instruction: "Warum erscheint der Mond in verschiedenen Phasen?",
			OptionA:     "Die Erde wirft einen Schatten auf den Mond",
			OptionB:     "Wolken verdecken Teile des Mondes",
			OptionC:     "Wir sehen unterschiedliche Teile der beleuchteten Mondhälfte",
			OptionD:     "Der Mond ändert seine Form",
			Answer:      "C",
			Split:       "test",
		},
	}
}
