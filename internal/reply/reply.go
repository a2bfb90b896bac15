// Package reply generates the final user-facing answer from matched
// problems and recommended projects.
package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/gumanista/hate-2-action/internal/llm"
	"github.com/gumanista/hate-2-action/internal/store"
)

// Style selects the tone of the generated answer.
type Style string

const (
	StyleEmpathetic Style = "empathetic"
	StyleFormal     Style = "formal"
	StyleSarcastic  Style = "sarcastic"
)

type styleSpec struct {
	system     string
	guidelines string
}

var styles = map[Style]styleSpec{
	StyleEmpathetic: {
		system: "You are an assistant that helps users by recommending relevant projects that can help solve user's problems.",
		guidelines: `Please write a response in ukrainian language that:
- Acknowledges the user's message and the problems above.
- Describes how the recommended projects can help solve those problems.
- Provides contact details of the projects, and guidance or next steps.
- Is concise, empathetic, and helpful.`,
	},
	StyleFormal: {
		system: "You are a professional assistant providing factual information about available projects.",
		guidelines: `Please write a formal response in ukrainian language that:
- States the identified issues in a professional manner.
- Presents recommended projects with clear, factual descriptions.
- Lists contact information and next steps in a structured format.
- Maintains a professional, business-like tone throughout.`,
	},
	StyleSarcastic: {
		system: "You are an assistant that helps users by recommending relevant projects that can help solve user's problems.",
		guidelines: `Be sarcastic, use snappy sentences and tongue-in-cheek jabs.
Please write a response in ukrainian language that:
- Sarcastically acknowledges the user's message and their problems.
- Mentions how the projects might help.
- Provides contact details of the projects, and guidance or next steps.
- Keeps it short and snappy.`,
	},
}

// Generator builds the reply prompt and calls the chat model.
type Generator struct {
	client llm.Client
	style  Style
}

// NewGenerator creates a Generator. Unknown styles fall back to empathetic.
func NewGenerator(client llm.Client, style Style) *Generator {
	if _, ok := styles[style]; !ok {
		style = StyleEmpathetic
	}
	return &Generator{client: client, style: style}
}

// Generate produces the answer text for one processed message.
func (g *Generator) Generate(ctx context.Context, messageText string, problems []store.Problem, projects []store.Project) (string, error) {
	spec := styles[g.style]

	var b strings.Builder
	fmt.Fprintf(&b, "User's message:\n%s\n\n", messageText)

	b.WriteString("Detected problems:\n")
	if len(problems) == 0 {
		b.WriteString("(none)\n")
	}
	for i, p := range problems {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, p.Name, p.Context)
	}

	b.WriteString("\nRecommended projects:\n")
	if len(projects) == 0 {
		b.WriteString("(none)\n")
	}
	for i, p := range projects {
		fmt.Fprintf(&b, "%d. %s: %s", i+1, p.Name, p.Description)
		if p.Website != "" {
			fmt.Fprintf(&b, " (website: %s)", p.Website)
		}
		if p.ContactEmail != "" {
			fmt.Fprintf(&b, " (contact: %s)", p.ContactEmail)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(spec.guidelines)

	out, err := g.client.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: spec.system},
		{Role: llm.RoleUser, Content: b.String()},
	})
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}
	return strings.TrimSpace(out), nil
}
