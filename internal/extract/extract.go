// Package extract detects social and psychological problems in free-text
// messages using a chat model, validating the structured output through a
// bounded JSON repair loop.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gumanista/hate-2-action/internal/llm"
)

// ErrMalformed indicates the model never produced valid JSON within the
// configured repair attempts. Callers must treat this as distinct from a
// successful extraction of zero problems.
var ErrMalformed = errors.New("extract: malformed model output")

// Problem is one detected problem, not yet persisted.
type Problem struct {
	Name    string `json:"name"`
	Context string `json:"context"`
}

// Config bounds the repair loop.
type Config struct {
	// RepairAttempts is how many times an invalid JSON response is sent
	// back for correction before giving up.
	RepairAttempts int
}

// DefaultConfig matches the reference deployment.
func DefaultConfig() Config {
	return Config{RepairAttempts: 2}
}

// Detector extracts problems from messages.
type Detector struct {
	client llm.Client
	cfg    Config
	logger *slog.Logger
}

// NewDetector creates a Detector.
func NewDetector(client llm.Client, cfg Config, logger *slog.Logger) *Detector {
	return &Detector{client: client, cfg: cfg, logger: logger}
}

// Detect sends the message with the few-shot prompt and returns the detected
// problems. Zero problems is a valid result. When the model returns invalid
// JSON it is re-prompted with the broken output and the parse error, at most
// cfg.RepairAttempts times; exhaustion returns an error wrapping ErrMalformed.
func (d *Detector) Detect(ctx context.Context, message string) ([]Problem, error) {
	raw, err := d.client.Complete(ctx, detectionPrompt(message))
	if err != nil {
		return nil, fmt.Errorf("detection call: %w", err)
	}

	problems, parseErr := parseProblems(raw)
	for attempt := 0; parseErr != nil; attempt++ {
		if attempt >= d.cfg.RepairAttempts {
			return nil, fmt.Errorf("%w: %v after %d repair attempts", ErrMalformed, parseErr, d.cfg.RepairAttempts)
		}
		d.logger.Warn("invalid extraction JSON, requesting repair", "attempt", attempt+1, "error", parseErr)

		raw, err = d.client.Complete(ctx, repairPrompt(raw, parseErr))
		if err != nil {
			return nil, fmt.Errorf("repair call: %w", err)
		}
		problems, parseErr = parseProblems(raw)
	}

	return problems, nil
}

type detectionResult struct {
	Problems []Problem `json:"problems"`
}

// parseProblems parses the model output as a {"problems": [...]} object.
// A valid object without the problems key yields zero problems, which is a
// success, unlike malformed JSON.
func parseProblems(raw string) ([]Problem, error) {
	var result detectionResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &result); err != nil {
		return nil, err
	}

	problems := make([]Problem, 0, len(result.Problems))
	for _, p := range result.Problems {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// stripFences removes a surrounding markdown code fence, which chat models
// add around JSON despite instructions not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
