package insight

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	got   CompletionRequest
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.calls++
	f.got = req
	return f.reply, f.err
}

const sampleReply = `{
  "agents": {"ui": "Clear layout", "seo": "Thin blog content", "analyst": "Revenue trending up"},
  "matrix": [
    {"priority": 1, "task": "Improve pricing CTA", "ui_score": "S", "seo_score": "B", "analyst_score": "A", "total": "A", "detail": "Move the CTA above the fold"}
  ]
}`

func series(n int) []TrafficPoint {
	out := make([]TrafficPoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, TrafficPoint{Date: "2024-01-01", Users: i})
	}
	return out
}

func TestAnalyzer_Analyze(t *testing.T) {
	fake := &fakeCompleter{reply: sampleReply}
	c, err := NewAnalyzer(fake).Analyze(context.Background(), "key", "", series(30))
	require.NoError(t, err)

	assert.Equal(t, "Clear layout", c.Agents.UI)
	require.Len(t, c.Matrix, 1)
	assert.Equal(t, 1, c.Matrix[0].Priority)
	assert.Equal(t, "A", c.Matrix[0].Total)

	assert.Equal(t, DefaultModel, fake.got.Model)
	assert.True(t, fake.got.JSON)
	assert.Equal(t, "key", fake.got.APIKey)
}

func TestAnalyzer_MissingKey(t *testing.T) {
	fake := &fakeCompleter{reply: sampleReply}
	_, err := NewAnalyzer(fake).Analyze(context.Background(), "", ModelGeminiPro, series(3))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, fake.calls)
}

func TestAnalyzer_UnsupportedModel(t *testing.T) {
	fake := &fakeCompleter{reply: sampleReply}
	_, err := NewAnalyzer(fake).Analyze(context.Background(), "key", "gpt-4", series(3))
	require.Error(t, err)
	assert.Zero(t, fake.calls)
}

func TestAnalyzer_PassesProviderErrorThrough(t *testing.T) {
	provider := &CompletionError{StatusCode: 429, Message: "Resource has been exhausted (e.g. check quota)."}
	fake := &fakeCompleter{err: provider}

	_, err := NewAnalyzer(fake).Analyze(context.Background(), "key", ModelGeminiFlash, series(3))
	var cerr *CompletionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "Resource has been exhausted (e.g. check quota).", err.Error())
}

func TestBuildPrompt_UsesLastSevenDays(t *testing.T) {
	prompt, err := BuildPrompt(series(30))
	require.NoError(t, err)

	start := strings.Index(prompt, "Data: ") + len("Data: ")
	end := strings.Index(prompt[start:], "\n") + start
	var sent []TrafficPoint
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end]), &sent))
	require.Len(t, sent, 7)
	assert.Equal(t, 23, sent[0].Users)
	assert.Equal(t, 29, sent[6].Users)
}

func TestParseCommentary(t *testing.T) {
	c, err := ParseCommentary("```json\n" + sampleReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Thin blog content", c.Agents.SEO)

	_, err = ParseCommentary("not json")
	assert.Error(t, err)
}
