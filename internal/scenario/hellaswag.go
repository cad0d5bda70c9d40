package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	HellaSwagInstructions = map[string]string{
		"de": "Die folgenden Fragen testen gesunden Menschenverstand. Wählen Sie die plausibelste Fortsetzung.",
		"en": "The following questions test common sense. Choose the most plausible continuation.",
	}
	HellaSwagInputNouns = map[string]string{
		"de": "Frage",
		"en": "Question",
	}
	HellaSwagOutputNouns = map[string]string{
		"de": "Antwort",
		"en": "Answer",
	}
)

// HellaSwagScenario loads the machine-translated HellaSwag sentence
// completion dataset (alexandrainst/m_hellaswag) for one language.
// Only a test split is available.
type HellaSwagScenario struct {
	Language string
}

type hellaSwagRow struct {
	Ctx     string   `json:"ctx"`
	Endings []string `json:"endings"`
	Label   string   `json:"label"`
}

func (s *HellaSwagScenario) Name() string { return "hellaswag_multilingual" }

func (s *HellaSwagScenario) Description() string {
	return "HellaSwag commonsense sentence completion, machine-translated"
}

func (s *HellaSwagScenario) Tags() []string { return []string{"knowledge", "multiple_choice"} }

func (s *HellaSwagScenario) Instances(ctx context.Context) ([]Instance, error) {
	if ctx == nil {
		return nil, errors.New("hellaswag: nil context")
	}
	language := strings.TrimSpace(s.Language)
	if language == "" {
		return nil, errors.New("hellaswag: missing language")
	}

	path := dataPath("hellaswag", language)
	rows, err := readJSONL[hellaSwagRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			rows = defaultHellaSwagSample()
		} else {
			return nil, fmt.Errorf("hellaswag: load %q: %w", path, err)
		}
	}

	out := make([]Instance, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		context := strings.TrimSpace(row.Ctx)
		if context == "" || len(row.Endings) == 0 {
			continue
		}

		label, err := strconv.Atoi(strings.TrimSpace(row.Label))
		if err != nil || label < 0 || label >= len(row.Endings) {
			return nil, fmt.Errorf("hellaswag: row %d: invalid label %q", i+1, row.Label)
		}

		refs := make([]Reference, 0, len(row.Endings))
		for j, ending := range row.Endings {
			ref := Reference{Output: Output{Text: strings.TrimSpace(ending)}}
			if j == label {
				ref.Tags = []string{CorrectTag}
			}
			refs = append(refs, ref)
		}

		out = append(out, Instance{
			ID:         fmt.Sprintf("hellaswag-%s-%d", language, i+1),
			Input:      Input{Text: context},
			References: refs,
			Split:      TestSplit,
		})
	}
	return out, nil
}

func defaultHellaSwagSample() []hellaSwagRow {
	return []hellaSwagRow{
		{
			Ctx:     "Ein Mann stellt eine Leiter an einen Baum.",
			Endings: []string{"Er klettert hinauf, um Äpfel zu pflücken.", "Die Leiter beginnt zu singen.", "Der Baum läuft davon.", "Er isst die Leiter."},
			Label:   "0",
		},
		{
			Ctx:     "Eine Frau füllt einen Topf mit Wasser und stellt ihn auf den Herd.",
			Endings: []string{"Sie wirft den Topf aus dem Fenster.", "Sie wartet, bis das Wasser kocht.", "Der Herd schwimmt weg.", "Das Wasser wird zu Sand."},
			Label:   "1",
		},
	}
}
