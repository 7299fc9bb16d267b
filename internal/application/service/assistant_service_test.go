package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
)

// mockParser implements port.InvoiceParser with an injectable function.
type mockParser struct {
	parseFunc func(ctx context.Context, prompt string) (*port.ParseResult, error)
}

func (m *mockParser) Parse(ctx context.Context, prompt string) (*port.ParseResult, error) {
	return m.parseFunc(ctx, prompt)
}

var _ port.InvoiceParser = (*mockParser)(nil)

func TestAssistantParseEmptyPrompt(t *testing.T) {
	parser := &mockParser{
		parseFunc: func(ctx context.Context, prompt string) (*port.ParseResult, error) {
			t.Fatal("parser must not be called for an empty prompt")
			return nil, nil
		},
	}
	svc := NewAssistantService(parser, zap.NewNop())

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := svc.Parse(context.Background(), prompt)
		assert.ErrorIs(t, err, ErrEmptyPrompt)
	}
}

func TestAssistantParseTrimsPrompt(t *testing.T) {
	var seen string
	parser := &mockParser{
		parseFunc: func(ctx context.Context, prompt string) (*port.ParseResult, error) {
			seen = prompt
			return &port.ParseResult{Items: []port.ParsedItem{}}, nil
		},
	}
	svc := NewAssistantService(parser, zap.NewNop())

	result, err := svc.Parse(context.Background(), "  2 hours of design  ")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "2 hours of design", seen)
}

func TestAssistantParsePassesThroughErrors(t *testing.T) {
	parseErr := port.NewParseError(port.ParseErrRateLimited, errors.New("429"))
	parser := &mockParser{
		parseFunc: func(ctx context.Context, prompt string) (*port.ParseResult, error) {
			return nil, parseErr
		},
	}
	svc := NewAssistantService(parser, zap.NewNop())

	_, err := svc.Parse(context.Background(), "anything")
	assert.Equal(t, parseErr, err)
	assert.False(t, svc.Busy(), "busy flag clears after a failure")
}

func TestAssistantParseSingleInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	parser := &mockParser{
		parseFunc: func(ctx context.Context, prompt string) (*port.ParseResult, error) {
			close(started)
			<-release
			return &port.ParseResult{Items: []port.ParsedItem{{Name: "Item", Quantity: 1}}}, nil
		},
	}
	svc := NewAssistantService(parser, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Parse(context.Background(), "first request")
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first parse never started")
	}
	assert.True(t, svc.Busy())

	_, err := svc.Parse(context.Background(), "second request")
	assert.ErrorIs(t, err, ErrParseInFlight)

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first parse never finished")
	}
	assert.False(t, svc.Busy())
}
