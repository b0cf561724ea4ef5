// Package providertest provides a scripted providers.Model for tests.
package providertest

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/crucible/internal/providers"
)

// ErrExhausted is returned when the script has no responses left.
var ErrExhausted = errors.New("providertest: no scripted responses left")

// Scripted returns canned responses in order and records every request.
// A response of type error is returned as the call's error.
type Scripted struct {
	mu        sync.Mutex
	responses []any
	calls     []providers.Request
}

// New returns a Scripted model. Each response is a string or an error.
func New(responses ...any) *Scripted {
	return &Scripted{responses: responses}
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Complete(_ context.Context, req providers.Request) (providers.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if len(s.responses) == 0 {
		return providers.Response{}, ErrExhausted
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	switch v := next.(type) {
	case error:
		return providers.Response{}, v
	case string:
		return providers.Response{Content: v}, nil
	default:
		return providers.Response{}, errors.New("providertest: unsupported scripted response")
	}
}

// Calls returns a copy of the requests received so far.
func (s *Scripted) Calls() []providers.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]providers.Request(nil), s.calls...)
}
