package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// MGSMAnswerPrefix localizes "The answer is" for the final-answer form
// of an MGSM reference.
var MGSMAnswerPrefix = map[string]string{
	"bn": "উত্তর হল",
	"de": "Die Antwort ist",
	"en": "The answer is",
	"es": "La respuesta es",
	"fr": "La réponse est",
}

// MGSMScenario loads the Multilingual Grade School Math benchmark
// (juletxara/mgsm): the same 250 GSM8K problems human-translated into
// ten languages, plus 8 translated few-shot exemplars in the train
// split. With UseCoTPrompt, train references keep the full worked
// solution; otherwise they carry only the localized final-answer form.
type MGSMScenario struct {
	Language     string
	UseCoTPrompt bool
}

type mgsmRow struct {
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	AnswerNumber string `json:"answer_number"`
	Split        string `json:"split,omitempty"`
}

func (s *MGSMScenario) Name() string { return "mgsm" }

func (s *MGSMScenario) Description() string {
	return "Multilingual Grade School Math Benchmark (MGSM)"
}

func (s *MGSMScenario) Tags() []string { return []string{"reasoning", "math"} }

func (s *MGSMScenario) Instances(ctx context.Context) ([]Instance, error) {
	if ctx == nil {
		return nil, errors.New("mgsm: nil context")
	}
	language := strings.TrimSpace(s.Language)
	if language == "" {
		return nil, errors.New("mgsm: missing language")
	}

	prefix, ok := MGSMAnswerPrefix[language]
	if !ok {
		prefix = MGSMAnswerPrefix["en"]
	}

	path := dataPath("mgsm", language)
	rows, err := readJSONL[mgsmRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			rows = defaultMGSMSample()
		} else {
			return nil, fmt.Errorf("mgsm: load %q: %w", path, err)
		}
	}

	out := make([]Instance, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		question := strings.TrimSpace(row.Question)
		number := strings.TrimSpace(row.AnswerNumber)
		if question == "" || number == "" {
			continue
		}

		split := normalizeSplit(row.Split)

		var answerText string
		if split == TrainSplit && s.UseCoTPrompt && strings.TrimSpace(row.Answer) != "" {
			answerText = strings.TrimSpace(row.Answer)
		} else {
			answerText = fmt.Sprintf("%s %s.", prefix, number)
		}

		out = append(out, Instance{
			ID:         fmt.Sprintf("mgsm-%s-%d", language, i+1),
			Input:      Input{Text: question},
			References: []Reference{{Output: Output{Text: answerText}, Tags: []string{CorrectTag}}},
			Split:      split,
		})
	}
	return out, nil
}

func defaultMGSMSample() []mgsmRow {
	return []mgsmRow{
		{
			Question:     "Lena hat 3 Körbe mit je 8 Äpfeln. Sie verschenkt 5 Äpfel. Wie viele Äpfel hat sie noch?",
			Answer:       "Lena hat 3 * 8 = 24 Äpfel. Nach dem Verschenken bleiben 24 - 5 = 19. Die Antwort ist 19.",
			AnswerNumber: "19",
			Split:        "train",
		},
		{
			Question:     "Ein Zug fährt 60 Kilometer pro Stunde. Wie weit kommt er in 4 Stunden?",
			AnswerNumber: "240",
			Split:        "test",
		},
	}
}
