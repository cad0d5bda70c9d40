package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Per-language prompt fragments for the MMLU scenario. The %s slot
// receives the (translated) subject name.
var (
	MMLUInstructions = map[string]string{
		"de": "Beantworten Sie die folgenden Multiple-Choice-Fragen zu %s. Jede Frage hat vier Antwortmöglichkeiten: A, B, C oder D. Wählen Sie die passendste Antwort und geben Sie nur den entsprechenden Buchstaben an.",
		"en": "Answer the following multiple-choice questions about %s. Each question has four answer choices: A, B, C or D. Choose the most fitting answer and reply with only the corresponding letter.",
	}
	MMLUInputNouns = map[string]string{
		"de": "Frage",
		"en": "Question",
	}
	MMLUOutputNouns = map[string]string{
		"de": "Antwort",
		"en": "Answer",
	}
)

// SubjectTranslationsDE maps MMLU subject identifiers to their German
// display names, used when formatting instructions.
var SubjectTranslationsDE = map[string]string{
	"abstract_algebra":                    "Abstrakte Algebra",
	"anatomy":                             "Anatomie",
	"astronomy":                           "Astronomie",
	"business_ethics":                     "Wirtschaftsethik",
	"clinical_knowledge":                  "Klinisches Wissen",
	"college_biology":                     "Hochschulbiologie",
	"college_chemistry":                   "Hochschulchemie",
	"college_computer_science":            "Hochschulinformatik",
	"college_mathematics":                 "Hochschulmathematik",
	"college_medicine":                    "Hochschulmedizin",
	"college_physics":                     "Hochschulphysik",
	"computer_security":                   "Computersicherheit",
	"conceptual_physics":                  "Konzeptuelle Physik",
	"econometrics":                        "Ökonometrie",
	"electrical_engineering":              "Elektrotechnik",
	"elementary_mathematics":              "Elementarmathematik",
	"formal_logic":                        "Formale Logik",
	"global_facts":                        "Globale Fakten",
	"high_school_biology":                 "Schulbiologie",
	"high_school_chemistry":               "Schulchemie",
	"high_school_computer_science":        "Schul-Informatik",
	"high_school_european_history":        "Europäische Schulgeschichte",
	"high_school_geography":               "Schulgeographie",
	"high_school_government_and_politics": "Schulpädagogik und Politik",
	"high_school_macroeconomics":          "Schulmakroökonomie",
	"high_school_mathematics":             "Schulmathematik",
	"high_school_microeconomics":          "Schulmikroökonomie",
	"high_school_physics":                 "Schulphysik",
	"high_school_psychology":              "Schulpsychologie",
	"high_school_statistics":              "Schulstatistik",
	"high_school_us_history":              "Amerikanische Schulgeschichte",
	"high_school_world_history":           "Weltgeschichte für Schulen",
	"human_aging":                         "Menschliches Altern",
	"human_sexuality":                     "Menschliche Sexualität",
	"international_law":                   "Internationales Recht",
	"jurisprudence":                       "Rechtswissenschaft",
	"logical_fallacies":                   "Logische Fehlschlüsse",
	"machine_learning":                    "Maschinelles Lernen",
	"management":                          "Management",
	"marketing":                           "Marketing",
	"medical_genetics":                    "Medizinische Genetik",
	"miscellaneous":                       "Verschiedenes",
	"moral_disputes":                      "Moralische Auseinandersetzungen",
	"moral_scenarios":                     "Moralische Szenarien",
	"nutrition":                           "Ernährung",
	"philosophy":                          "Philosophie",
	"prehistory":                          "Urgeschichte",
	"professional_accounting":             "Professionelles Rechnungswesen",
	"professional_law":                    "Berufsrecht",
	"professional_medicine":               "Berufsmedizin",
	"professional_psychology":             "Berufspsychologie",
	"public_relations":                    "Öffentlichkeitsarbeit",
	"security_studies":                    "Sicherheitsstudien",
	"sociology":                           "Soziologie",
	"us_foreign_policy":                   "US-Außenpolitik",
	"virology":                            "Virologie",
	"world_religions":                     "Weltreligionen",
}

// MMLUScenario loads the multilingual MMLU (MMMLU) multiple-choice
// dataset for one subject and language.
type MMLUScenario struct {
	Subject  string
	Language string
}

type mmluRow struct {
	Question string `json:"question"`
	A        string `json:"a"`
	B        string `json:"b"`
	C        string `json:"c"`
	D        string `json:"d"`
	Answer   string `json:"answer"`
	Subject  string `json:"subject,omitempty"`
}

func (s *MMLUScenario) Name() string { return "mmlu_multilingual" }

func (s *MMLUScenario) Description() string {
	return "Massive Multitask Language Understanding, machine-translated (openai/MMMLU)"
}

func (s *MMLUScenario) Tags() []string { return []string{"knowledge", "multiple_choice"} }

func (s *MMLUScenario) Instances(ctx context.Context) ([]Instance, error) {
	if ctx == nil {
		return nil, errors.New("mmlu: nil context")
	}
	language := strings.TrimSpace(s.Language)
	if language == "" {
		return nil, errors.New("mmlu: missing language")
	}
	subject := strings.TrimSpace(s.Subject)
	if subject == "" {
		return nil, errors.New("mmlu: missing subject")
	}

	path := dataPath("mmlu", language)
	rows, err := readJSONL[mmluRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			rows = defaultMMLUSample()
		} else {
			return nil, fmt.Errorf("mmlu: load %q: %w", path, err)
		}
	}

	out := make([]Instance, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if rowSubject := strings.TrimSpace(row.Subject); rowSubject != "" && rowSubject != subject {
			continue
		}

		question := strings.TrimSpace(row.Question)
		if question == "" {
			continue
		}

		refs, err := lettersToReferences([]string{row.A, row.B, row.C, row.D}, row.Answer)
		if err != nil {
			return nil, fmt.Errorf("mmlu: row %d: %w", i+1, err)
		}

		out = append(out, Instance{
			ID:         fmt.Sprintf("mmlu-%s-%s-%d", language, subject, i+1),
			Input:      Input{Text: question},
			References: refs,
			Split:      TestSplit,
		})
	}
	return out, nil
}

// lettersToReferences builds one reference per choice, tagging the one
// named by the answer letter (A-D) as correct.
func lettersToReferences(choices []string, answer string) ([]Reference, error) {
	answer = strings.ToUpper(strings.TrimSpace(answer))
	if len(answer) != 1 {
		return nil, fmt.Errorf("invalid answer letter %q", answer)
	}
	idx := int(answer[0] - 'A')
	if idx < 0 || idx >= len(choices) {
		return nil, fmt.Errorf("answer letter %q out of range", answer)
	}

	out := make([]Reference, 0, len(choices))
	for i, choice := range choices {
		ref := Reference{Output: Output{Text: strings.TrimSpace(choice)}}
		if i == idx {
			ref.Tags = []string{CorrectTag}
		}
		out = append(out, ref)
	}
	return out, nil
}

func defaultMMLUSample() []mmluRow {
	return []mmluRow{
		{
			Question: "Welcher Planet ist als der Rote Planet bekannt?",
			A:        "Erde",
			B:        "Mars",
			C:        "Jupiter",
			D:        "Venus",
			Answer:   "B",
		},
		{
			Question: "Wie viele Knochen hat ein erwachsener Mensch?",
			A:        "106",
			B:        "186",
			C:        "206",
			D:        "306",
			Answer:   "C",
		},
		{
			Question: "Bei welcher Temperatur siedet Wasser auf Meereshöhe (Celsius)?",
			A:        "50",
			B:        "75",
			C:        "100",
			D:        "125",
			Answer:   "C",
		},
	}
}
