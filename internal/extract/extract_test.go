package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gumanista/hate-2-action/internal/llm"
)

// scriptedClient returns canned responses in order, cycling the last one
// when the script runs out.
type scriptedClient struct {
	responses []string
	err       error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	i := c.calls
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	return c.responses[i], nil
}

func (c *scriptedClient) Name() string { return "scripted" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetect_ValidOutput(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"problems": [{"name": "isolation", "context": "lives alone, no support network"}]}`,
	}}
	d := NewDetector(client, DefaultConfig(), testLogger())

	problems, err := d.Detect(context.Background(), "I have been completely alone for months")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(problems) != 1 || problems[0].Name != "isolation" {
		t.Fatalf("problems = %+v", problems)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 model call, got %d", client.calls)
	}
}

func TestDetect_RepairRecovers(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"problems": [{"name": "debt",`,
		`{"problems": [{"name": "debt", "context": "owes money"}]}`,
	}}
	d := NewDetector(client, DefaultConfig(), testLogger())

	problems, err := d.Detect(context.Background(), "msg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(problems) != 1 || problems[0].Name != "debt" {
		t.Fatalf("problems = %+v", problems)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", client.calls)
	}
}

func TestDetect_RepairBound(t *testing.T) {
	client := &scriptedClient{responses: []string{"not json at all"}}
	cfg := Config{RepairAttempts: 2}
	d := NewDetector(client, cfg, testLogger())

	_, err := d.Detect(context.Background(), "msg")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	// One detection call plus exactly RepairAttempts repair calls.
	if want := 1 + cfg.RepairAttempts; client.calls != want {
		t.Errorf("expected %d model calls, got %d", want, client.calls)
	}
}

func TestDetect_UpstreamErrorPassesThrough(t *testing.T) {
	client := &scriptedClient{err: llm.ErrUnavailable}
	d := NewDetector(client, DefaultConfig(), testLogger())

	_, err := d.Detect(context.Background(), "msg")
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("err = %v, want llm.ErrUnavailable", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("upstream failure must not be reported as malformed output")
	}
}

func TestDetect_ZeroProblems(t *testing.T) {
	for name, raw := range map[string]string{
		"empty list":  `{"problems": []}`,
		"missing key": `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := &scriptedClient{responses: []string{raw}}
			d := NewDetector(client, DefaultConfig(), testLogger())

			problems, err := d.Detect(context.Background(), "have a nice day")
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if len(problems) != 0 {
				t.Errorf("problems = %+v, want none", problems)
			}
			if client.calls != 1 {
				t.Errorf("zero problems must not trigger repair, got %d calls", client.calls)
			}
		})
	}
}

func TestDetect_SkipsUnnamedProblems(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"problems": [{"name": "  ", "context": "x"}, {"name": "anxiety", "context": "panic attacks"}]}`,
	}}
	d := NewDetector(client, DefaultConfig(), testLogger())

	problems, err := d.Detect(context.Background(), "msg")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(problems) != 1 || problems[0].Name != "anxiety" {
		t.Fatalf("problems = %+v", problems)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare", `{"problems": []}`, `{"problems": []}`},
		{"json fence", "```json\n{\"problems\": []}\n```", `{"problems": []}`},
		{"plain fence", "```\n{}\n```", `{}`},
		{"leading whitespace", "  \n```json\n{}\n```\n", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
