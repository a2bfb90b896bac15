// Package pipeline ties the processing stages together: persist the incoming
// message, extract problems, run the matching orchestrator, generate the
// reply, persist it and publish an event.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gumanista/hate-2-action/internal/extract"
	"github.com/gumanista/hate-2-action/internal/matching"
	"github.com/gumanista/hate-2-action/internal/store"
)

// Messages is the message/response persistence the pipeline needs.
type Messages interface {
	Add(ctx context.Context, m *store.Message) (int64, error)
	AddResponse(ctx context.Context, messageID int64, text string) (int64, error)
}

// Problems is the problem persistence the pipeline needs.
type Problems interface {
	Upsert(ctx context.Context, name, context string) (int64, error)
	GetByIDs(ctx context.Context, ids []int64) ([]store.Problem, error)
}

// Projects reads project details for the reply.
type Projects interface {
	GetByIDs(ctx context.Context, ids []int64) ([]store.Project, error)
}

// Detector extracts problems from a message text.
type Detector interface {
	Detect(ctx context.Context, message string) ([]extract.Problem, error)
}

// Orchestrator runs the embedding-and-matching hops for a problem batch.
type Orchestrator interface {
	Run(ctx context.Context, problemIDs []int64) (*matching.Result, error)
}

// Generator produces the final answer text.
type Generator interface {
	Generate(ctx context.Context, messageText string, problems []store.Problem, projects []store.Project) (string, error)
}

// Publisher announces processed messages. May be nil.
type Publisher interface {
	MessageProcessed(messageID int64, problemIDs, solutionIDs, projectIDs []int64) error
}

// Pipeline processes one message at a time, strictly sequentially.
type Pipeline struct {
	messages  Messages
	problems  Problems
	projects  Projects
	detector  Detector
	orch      Orchestrator
	generator Generator
	publisher Publisher
	logger    *slog.Logger
}

// New creates a Pipeline. publisher may be nil.
func New(messages Messages, problems Problems, projects Projects, detector Detector, orch Orchestrator, generator Generator, publisher Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		messages:  messages,
		problems:  problems,
		projects:  projects,
		detector:  detector,
		orch:      orch,
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

// Request is one incoming message.
type Request struct {
	UserID    int64
	Username  string
	ChatTitle string
	Text      string
}

// Result is the outcome of one pipeline run. Empty id lists are valid:
// a message with no detectable problems still gets a reply.
type Result struct {
	MessageID   int64   `json:"message_id"`
	ProblemIDs  []int64 `json:"problem_ids"`
	SolutionIDs []int64 `json:"solution_ids"`
	ProjectIDs  []int64 `json:"project_ids"`
	Reply       string  `json:"reply"`
}

// Process runs the full pipeline for one message.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	messageID, err := p.messages.Add(ctx, &store.Message{
		UserID:    req.UserID,
		Username:  req.Username,
		ChatTitle: req.ChatTitle,
		Text:      req.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("storing message: %w", err)
	}

	detected, err := p.detector.Detect(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("detecting problems: %w", err)
	}

	problemIDs := make([]int64, 0, len(detected))
	for _, d := range detected {
		id, err := p.problems.Upsert(ctx, d.Name, d.Context)
		if err != nil {
			return nil, fmt.Errorf("upserting problem %q: %w", d.Name, err)
		}
		problemIDs = append(problemIDs, id)
	}
	p.logger.Info("problems detected", "message_id", messageID, "count", len(problemIDs))

	res, err := p.orch.Run(ctx, problemIDs)
	if err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}

	problems, err := p.problems.GetByIDs(ctx, problemIDs)
	if err != nil {
		return nil, fmt.Errorf("loading problems: %w", err)
	}
	projects, err := p.projects.GetByIDs(ctx, res.ProjectIDs)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	replyText, err := p.generator.Generate(ctx, req.Text, problems, projects)
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	if _, err := p.messages.AddResponse(ctx, messageID, replyText); err != nil {
		return nil, fmt.Errorf("storing response: %w", err)
	}

	if p.publisher != nil {
		if err := p.publisher.MessageProcessed(messageID, problemIDs, res.SolutionIDs, res.ProjectIDs); err != nil {
			p.logger.Warn("event publish failed", "message_id", messageID, "error", err)
		}
	}

	return &Result{
		MessageID:   messageID,
		ProblemIDs:  problemIDs,
		SolutionIDs: res.SolutionIDs,
		ProjectIDs:  res.ProjectIDs,
		Reply:       replyText,
	}, nil
}
