package completion

import (
	"context"
	"testing"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sourcing-cli/pkg/anthropic"
)

type call struct {
	model string
}

type fakeAnthropicClient struct {
	// responses maps model name to a queue of outcomes consumed in order.
	responses map[string][]outcome
	calls     []call
}

type outcome struct {
	text string
	err  error
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls = append(f.calls, call{model: req.Model})
	queue := f.responses[req.Model]
	if len(queue) == 0 {
		return nil, eris.New("no scripted response")
	}
	o := queue[0]
	f.responses[req.Model] = queue[1:]
	if o.err != nil {
		return nil, o.err
	}
	return &anthropic.MessageResponse{Text: o.text}, nil
}

func apiError(status int) error {
	return eris.Wrap(&sdk.Error{StatusCode: status}, "anthropic: create message")
}

func TestComplete_FirstModelSucceeds(t *testing.T) {
	client := &fakeAnthropicClient{responses: map[string][]outcome{
		"model-a": {{text: "  hello  "}},
	}}
	ch := NewChain(client, []string{"model-a", "model-b"})

	assert.Equal(t, "hello", ch.Complete(context.Background(), "prompt", 0))
	assert.Len(t, client.calls, 1)
}

func TestComplete_NotFoundSkipsToNextModel(t *testing.T) {
	client := &fakeAnthropicClient{responses: map[string][]outcome{
		"model-a": {{err: apiError(404)}},
		"model-b": {{text: "from fallback"}},
	}}
	ch := NewChain(client, []string{"model-a", "model-b"})

	assert.Equal(t, "from fallback", ch.Complete(context.Background(), "prompt", 0))
	// 404 must not be retried on the same model.
	assert.Equal(t, []call{{model: "model-a"}, {model: "model-b"}}, client.calls)
}

func TestComplete_RateLimitRetriesSameModel(t *testing.T) {
	client := &fakeAnthropicClient{responses: map[string][]outcome{
		"model-a": {{err: apiError(429)}, {text: "second try"}},
	}}
	ch := NewChain(client, []string{"model-a", "model-b"})

	start := time.Now()
	got := ch.Complete(context.Background(), "prompt", 0)

	assert.Equal(t, "second try", got)
	assert.Equal(t, []call{{model: "model-a"}, {model: "model-a"}}, client.calls)
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Second, "first retry waits 2s")
}

func TestComplete_HardErrorFallsThrough(t *testing.T) {
	client := &fakeAnthropicClient{responses: map[string][]outcome{
		"model-a": {{err: eris.New("connection refused")}},
		"model-b": {{text: "ok"}},
	}}
	ch := NewChain(client, []string{"model-a", "model-b"})

	assert.Equal(t, "ok", ch.Complete(context.Background(), "prompt", 0))
	assert.Len(t, client.calls, 2)
}

func TestComplete_AllModelsFail(t *testing.T) {
	client := &fakeAnthropicClient{responses: map[string][]outcome{}}
	ch := NewChain(client, []string{"model-a", "model-b"})

	assert.Empty(t, ch.Complete(context.Background(), "prompt", 0))
	assert.Len(t, client.calls, 2)
}

func TestComplete_NilClient(t *testing.T) {
	ch := NewChain(nil, []string{"model-a"})
	assert.Empty(t, ch.Complete(context.Background(), "prompt", 0))
}

func TestComplete_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeAnthropicClient{responses: map[string][]outcome{
		"model-a": {{err: apiError(429)}},
	}}
	ch := NewChain(client, []string{"model-a", "model-b"})

	assert.Empty(t, ch.Complete(ctx, "prompt", 0))
	assert.Len(t, client.calls, 1, "canceled context must not fall through to other models")
}
