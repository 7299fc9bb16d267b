package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
)

var (
	// ErrEmptyPrompt rejects parse requests with nothing to parse.
	ErrEmptyPrompt = errors.New("please enter a description")

	// ErrParseInFlight signals that a parse request is already running.
	// Callers disable re-submission until the current one resolves.
	ErrParseInFlight = errors.New("a parse request is already in progress")
)

// AssistantService fronts the NL parser with a single-in-flight guard.
// Once issued, a request runs to completion or failure; there is no
// cancellation beyond whatever deadline the context carries.
type AssistantService struct {
	parser port.InvoiceParser
	logger *zap.Logger
	busy   atomic.Bool
}

// NewAssistantService creates the assistant service.
func NewAssistantService(parser port.InvoiceParser, logger *zap.Logger) *AssistantService {
	return &AssistantService{parser: parser, logger: logger}
}

// Parse runs one prompt through the parser. A second call while one is in
// flight fails fast with ErrParseInFlight instead of queueing.
func (s *AssistantService) Parse(ctx context.Context, prompt string) (*port.ParseResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrParseInFlight
	}
	defer s.busy.Store(false)

	result, err := s.parser.Parse(ctx, prompt)
	if err != nil {
		s.logger.Warn("Parse request failed", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// Busy reports whether a parse request is currently in flight.
func (s *AssistantService) Busy() bool {
	return s.busy.Load()
}
