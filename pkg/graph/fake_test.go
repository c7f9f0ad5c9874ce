package graph

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/textgraph/pkg/ai"
)

// fakeAI answers each prompt with the first response whose key is
// contained in the prompt.
type fakeAI struct {
	mu        sync.Mutex
	responses map[string]string
	fail      string
	prompts   []string
	metrics   ai.ModelMetrics
}

func (f *fakeAI) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (f *fakeAI) GenerateCompletionWithFormat(
	ctx context.Context,
	name, description, prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.metrics.Add(ai.ModelMetrics{InputTokens: 10, OutputTokens: 5, TotalTokens: 15, DurationMs: 100})
	f.mu.Unlock()

	if f.fail != "" && strings.Contains(prompt, f.fail) {
		return errFakeModel
	}
	for key, res := range f.responses {
		if strings.Contains(prompt, key) {
			return json.Unmarshal([]byte(res), out)
		}
	}
	return json.Unmarshal([]byte(`{"nodes":[],"relationships":[]}`), out)
}

func (f *fakeAI) ResetMetrics() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = ai.ModelMetrics{}
}

func (f *fakeAI) GetMetrics() ai.ModelMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metrics
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const errFakeModel = fakeError("model unavailable")
