package client

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

var errTest = errors.New("test error")

func TestTruncateSequence_StopSequences(t *testing.T) {
	req := &Request{StopSequences: []string{"\n\n", "###"}}
	out := truncateSequence(GeneratedOutput{Text: "first### second\n\nthird"}, req, zap.NewNop())
	if out.Text != "first" {
		t.Fatalf("truncated text: got %q want %q", out.Text, "first")
	}
}

func TestTruncateSequence_EarliestStopWins(t *testing.T) {
	req := &Request{StopSequences: []string{"b", "a"}}
	out := truncateSequence(GeneratedOutput{Text: "xaybz"}, req, zap.NewNop())
	if out.Text != "x" {
		t.Fatalf("truncated text: got %q want %q", out.Text, "x")
	}
}

func TestTruncateSequence_Idempotent(t *testing.T) {
	req := &Request{
		StopSequences: []string{"\n"},
		MaxTokens:     2,
	}
	first := truncateSequence(GeneratedOutput{
		Text:   "ab cd\nef",
		Tokens: []Token{{Text: "ab"}, {Text: " cd"}, {Text: "\nef"}},
	}, req, zap.NewNop())

	second := truncateSequence(first, req, zap.NewNop())
	if second.Text != first.Text {
		t.Fatalf("second pass changed text: %q -> %q", first.Text, second.Text)
	}
	if len(second.Tokens) != len(first.Tokens) {
		t.Fatalf("second pass changed tokens: %d -> %d", len(first.Tokens), len(second.Tokens))
	}
}

func TestTruncateSequence_MaxTokens(t *testing.T) {
	req := &Request{MaxTokens: 2}
	out := truncateSequence(GeneratedOutput{
		Text:   "abc",
		Tokens: []Token{{Text: "a"}, {Text: "b"}, {Text: "c"}},
	}, req, zap.NewNop())

	if out.Text != "ab" {
		t.Fatalf("capped text: got %q want %q", out.Text, "ab")
	}
	if len(out.Tokens) != 2 {
		t.Fatalf("capped tokens: got %d want 2", len(out.Tokens))
	}
}

func TestTruncateSequence_EchoPromptUntouched(t *testing.T) {
	req := &Request{EchoPrompt: true, StopSequences: []string{"\n"}, MaxTokens: 1}
	in := GeneratedOutput{Text: "prompt\ncompletion", Tokens: []Token{{Text: "prompt"}, {Text: "\ncompletion"}}}
	out := truncateSequence(in, req, zap.NewNop())
	if out.Text != in.Text {
		t.Fatalf("echoed output modified: got %q want %q", out.Text, in.Text)
	}
	if len(out.Tokens) != len(in.Tokens) {
		t.Fatalf("echoed tokens modified: got %d want %d", len(out.Tokens), len(in.Tokens))
	}
}
