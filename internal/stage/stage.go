// Package stage runs one model call under a validate-and-retry loop.
//
// A stage is pending until the model's output passes its validator. Each
// rejected output is answered with a moderator correction appended to the
// user prompt, and the loop gives up after a fixed number of attempts.
package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/crucible/internal/providers"
	"github.com/dshills/crucible/internal/validate"
)

// DefaultMaxAttempts bounds model calls per stage.
const DefaultMaxAttempts = 3

// Spec describes one stage.
type Spec struct {
	// Name identifies the artifact in logs and errors ("critique", "verdict").
	Name   string
	System string
	User   string
	// Correction is the moderator sentence sent after a rejected output.
	Correction  string
	Validate    validate.Validator
	MaxTokens   int
	Temperature float64
}

// Result is an accepted stage output.
type Result struct {
	Text     string
	Attempts int
}

// ExhaustedError is returned when no attempt produced a valid output.
type ExhaustedError struct {
	Stage    string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to produce a valid %s after %d attempts: %v", e.Stage, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Runner executes stages against a model.
type Runner struct {
	Model       providers.Model
	MaxAttempts int
	Log         *zap.Logger
}

// Run calls the model until spec.Validate accepts the output or the attempt
// cap is reached. Model errors abort immediately; only format errors retry.
func (r *Runner) Run(ctx context.Context, spec Spec) (Result, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("stage", spec.Name))

	user := spec.User
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := r.Model.Complete(ctx, providers.Request{
			System:      spec.System,
			User:        user,
			MaxTokens:   spec.MaxTokens,
			Temperature: spec.Temperature,
		})
		if err != nil {
			return Result{Attempts: attempt}, fmt.Errorf("%s: model call: %w", spec.Name, err)
		}
		text := strings.TrimSpace(resp.Content) + "\n"
		if spec.Validate == nil {
			return Result{Text: text, Attempts: attempt}, nil
		}
		err = spec.Validate(text)
		if err == nil {
			log.Debug("stage accepted", zap.Int("attempt", attempt))
			return Result{Text: text, Attempts: attempt}, nil
		}
		if !validate.IsFormatError(err) {
			return Result{Attempts: attempt}, err
		}
		lastErr = err
		log.Info("stage output rejected", zap.Int("attempt", attempt), zap.Error(err))
		user = user + "\n\n" + Correction(spec.Correction, err) + "\n"
	}
	return Result{Attempts: maxAttempts}, &ExhaustedError{Stage: spec.Name, Attempts: maxAttempts, Last: lastErr}
}

// Correction renders the moderator message appended after a rejected output.
func Correction(sentence string, err error) string {
	reason := err.Error()
	var fe *validate.FormatError
	if errors.As(err, &fe) {
		reason = fe.Reason
	}
	return fmt.Sprintf("Moderator: %s Error: %s", sentence, reason)
}
