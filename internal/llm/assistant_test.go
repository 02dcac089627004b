// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/pdiddy/paperstack/pkg/types"
)

// fakeModel returns a canned reply and captures the prompt it was given.
type fakeModel struct {
	reply     string
	err       error
	gotPrompt string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if t, ok := part.(llms.TextContent); ok {
				m.gotPrompt = t.Text
			}
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.gotPrompt = prompt
	return m.reply, nil
}

func TestNewAssistantRequiresAPIKey(t *testing.T) {
	if _, err := NewAssistant(types.AIConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestSuggestTags(t *testing.T) {
	model := &fakeModel{reply: "Distributed Systems, consensus\nraft, Consensus"}
	a := NewAssistantWithModel(model)

	tags, err := a.SuggestTags(context.Background(), "Raft", "a consensus algorithm")
	if err != nil {
		t.Fatalf("SuggestTags: %v", err)
	}
	want := []string{"distributed systems", "consensus", "raft"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
	if !strings.Contains(model.gotPrompt, "Raft") || !strings.Contains(model.gotPrompt, "a consensus algorithm") {
		t.Errorf("prompt missing paper fields: %q", model.gotPrompt)
	}
}

func TestSuggestTagsError(t *testing.T) {
	a := NewAssistantWithModel(&fakeModel{err: fmt.Errorf("rate limited")})
	if _, err := a.SuggestTags(context.Background(), "t", "a"); err == nil {
		t.Error("expected error from failing model")
	}
}

func TestSummarize(t *testing.T) {
	a := NewAssistantWithModel(&fakeModel{reply: "  A crisp summary.\n"})

	got, err := a.Summarize(context.Background(), "long paper text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "A crisp summary." {
		t.Errorf("summary = %q, want trimmed reply", got)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"comma separated", "a1, b22, c33", []string{"a1", "b22", "c33"}},
		{"newline separated", "one\ntwo\nthree", []string{"one", "two", "three"}},
		{"dedup and lowercase", "NLP, nlp, Nlp", []string{"nlp"}},
		{"trims punctuation", "#ml, transformers.", []string{"ml", "transformers"}},
		{"caps at five", "a1,b2,c3,d4,e5,f6,g7", []string{"a1", "b2", "c3", "d4", "e5"}},
		{"empty reply", "", nil},
		{"blank entries dropped", "a1,,  ,b2", []string{"a1", "b2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTags(tt.reply); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTags(%q) = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}
