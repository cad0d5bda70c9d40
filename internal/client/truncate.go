package client

import (
	"strings"

	"go.uber.org/zap"
)

// truncateSequence trims a completion against the request's stop
// sequences and max-token budget. Truncation is idempotent; discarding
// content is logged as a warning, never treated as an error. Echoed
// prompts are returned untouched since the prompt itself may contain
// stop sequences.
func truncateSequence(output GeneratedOutput, req *Request, log *zap.Logger) GeneratedOutput {
	if req == nil || req.EchoPrompt {
		return output
	}
	if log == nil {
		log = zap.NewNop()
	}

	text := output.Text
	for _, stop := range req.StopSequences {
		if stop == "" {
			continue
		}
		if idx := strings.Index(text, stop); idx >= 0 {
			text = text[:idx]
		}
	}

	tokens := output.Tokens
	if len(text) < len(output.Text) {
		// Keep tokens while they still fit inside the truncated text.
		kept := 0
		total := 0
		for _, tok := range tokens {
			if total+len(tok.Text) > len(text) {
				break
			}
			total += len(tok.Text)
			kept++
		}
		if kept < len(tokens) {
			log.Warn("truncating tokens at stop sequence",
				zap.Int("before", len(tokens)),
				zap.Int("after", kept),
			)
		}
		tokens = tokens[:kept]
	}

	if req.MaxTokens > 0 && len(tokens) > req.MaxTokens {
		log.Warn("truncating tokens at max token budget",
			zap.Int("before", len(tokens)),
			zap.Int("after", req.MaxTokens),
		)
		tokens = tokens[:req.MaxTokens]
		var sb strings.Builder
		for _, tok := range tokens {
			sb.WriteString(tok.Text)
		}
		text = sb.String()
	}

	return GeneratedOutput{
		Text:    text,
		Logprob: output.Logprob,
		Tokens:  tokens,
	}
}
