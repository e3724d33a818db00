// Package llm is the gateway to the chat-completion endpoint that mines
// transcripts for ideas and synthesizes skills. Every operation is a
// single attempt with a hard timeout; any failure (missing credential,
// network, non-2xx, unparseable payload) collapses to a nil result the
// caller treats as "gateway unavailable." The worker must keep going
// either way.
package llm

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dotcommander/skillforge/internal/app"
	"github.com/dotcommander/skillforge/internal/idea"
	"github.com/dotcommander/skillforge/internal/skill"
)

// CredentialEnv gates all outbound calls. Absence means the learning
// feature is disabled, not broken.
const CredentialEnv = "ANTHROPIC_AUTH_TOKEN"

// Available reports whether the gateway credential is present.
func Available() bool {
	return os.Getenv(CredentialEnv) != ""
}

// Gateway issues chat-completion calls against an OpenAI-compatible
// endpoint.
type Gateway struct {
	client *openai.Client
	cfg    app.Learning
}

// New builds a gateway from effective learning settings.
func New(cfg app.Learning) *Gateway {
	oc := openai.DefaultConfig(os.Getenv(CredentialEnv))
	oc.BaseURL = cfg.BaseURL
	return &Gateway{client: openai.NewClientWithConfig(oc), cfg: cfg}
}

// complete issues one chat-completion request and returns the first
// choice's content. Empty string on any failure.
func (g *Gateway) complete(ctx context.Context, prompt string, timeout time.Duration) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: g.cfg.MaxTokens,
	})
	if err != nil {
		slog.Warn("chat completion failed", "error", err)
		return ""
	}
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// AnalyzeIdeas asks the model to mine a redacted transcript for
// behavioral patterns. Returns nil when the gateway is unavailable or
// the response contains no valid ideas.
func (g *Gateway) AnalyzeIdeas(ctx context.Context, transcript string) []idea.Candidate {
	content := g.complete(ctx, analyzePrompt(transcript), time.Duration(g.cfg.AnalyzeSecs)*time.Second)
	if content == "" {
		return nil
	}

	var payload struct {
		Ideas []idea.Candidate `json:"ideas"`
	}
	if !Unmarshal(content, &payload) {
		slog.Warn("analysis response was not valid JSON")
		return nil
	}

	var valid []idea.Candidate
	for _, c := range payload.Ideas {
		if c.Title == "" {
			continue
		}
		if !validCategory(c.Category) {
			c.Category = "repeated-workflows"
		}
		valid = append(valid, c)
	}
	return valid
}

func validCategory(cat string) bool {
	for _, c := range idea.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// DirectSkills asks the model to extract skills from one session's
// transcript without going through idea accumulation. Used by the manual
// learn mode. Returns nil on any failure; entries missing a name or
// steps are dropped.
func (g *Gateway) DirectSkills(ctx context.Context, transcript string) []*skill.Result {
	content := g.complete(ctx, directPrompt(transcript), time.Duration(g.cfg.SynthSecs)*time.Second)
	if content == "" {
		return nil
	}

	var payload struct {
		Skills []*skill.Result `json:"skills"`
	}
	if !Unmarshal(content, &payload) {
		slog.Warn("direct skill response was not valid JSON")
		return nil
	}

	var valid []*skill.Result
	for _, r := range payload.Skills {
		if r == nil || r.Name == "" || len(r.Steps) == 0 {
			continue
		}
		if r.Description == "" {
			r.Description = r.Name
		}
		valid = append(valid, r)
	}
	return valid
}

// SynthesizeSkill asks the model to distill an accumulated idea and its
// instances into a skill. Returns nil on any failure; a skill needs a
// name and at least one step to count as valid. Optional fields are
// back-filled from the idea so a terse response still renders a complete
// file.
func (g *Gateway) SynthesizeSkill(ctx context.Context, i *idea.Idea, instances []idea.Instance) *skill.Result {
	content := g.complete(ctx, synthesizePrompt(i, instances), time.Duration(g.cfg.SynthSecs)*time.Second)
	if content == "" {
		return nil
	}

	var r skill.Result
	if !Unmarshal(content, &r) {
		slog.Warn("synthesis response was not valid JSON", "idea", i.ID)
		return nil
	}
	if r.Name == "" || len(r.Steps) == 0 {
		slog.Warn("synthesis response missing required fields", "idea", i.ID)
		return nil
	}

	if r.Filename == "" {
		r.Filename = i.ID
	}
	if r.Description == "" {
		r.Description = i.Title
	}
	if r.Problem == "" {
		r.Problem = i.Trigger
	}
	if r.Solution == "" {
		r.Solution = i.Pattern
	}
	if len(r.Keywords) == 0 {
		r.Keywords = i.Keywords
	}
	return &r
}
