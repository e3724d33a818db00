// Package learner orchestrates one learning run: read the session's
// conversation, redact it, mine it for ideas, accumulate them, and
// synthesize skills from ideas that crossed the promotion threshold.
// Every gate that stops a run early is a successful no-op, not an error;
// a learning feature must never look broken to the interactive user.
package learner

import (
	"context"
	"time"

	"github.com/dotcommander/skillforge/internal/app"
	"github.com/dotcommander/skillforge/internal/conversation"
	"github.com/dotcommander/skillforge/internal/idea"
	"github.com/dotcommander/skillforge/internal/llm"
	"github.com/dotcommander/skillforge/internal/logging"
	"github.com/dotcommander/skillforge/internal/redact"
	"github.com/dotcommander/skillforge/internal/skill"
	"github.com/dotcommander/skillforge/internal/store"
)

// Early-exit reasons, recorded in the run history.
const (
	ReasonGatewayUnavailable  = "gateway unavailable"
	ReasonNoConversation      = "no conversation found"
	ReasonInsufficientPrompts = "insufficient prompt count"
	ReasonNoIdeas             = "no ideas identified"
)

// Params identifies the session a run operates on.
type Params struct {
	SessionID string
	Project   string
	Source    string // store.SourceHook or store.SourceManual
}

// Summary is the outcome of one run, suitable for a run-history row.
type Summary struct {
	Status        string
	Reason        string
	IdeasFound    int
	IdeasNew      int
	IdeasPromoted int
	SkillsCreated int
	SkillsMerged  int
	Failures      int
}

// Runner wires the pipeline's collaborators together for one session.
type Runner struct {
	p       Params
	cfg     app.Learning
	gateway *llm.Gateway
	log     *logging.Logger
}

// NewRunner builds a runner for one session using effective settings.
func NewRunner(p Params) *Runner {
	cfg := app.EffectiveLearning()
	return &Runner{
		p:       p,
		cfg:     cfg,
		gateway: llm.New(cfg),
		log:     logging.New(p.Project, p.SessionID),
	}
}

// Log exposes the run's learning logger for callers that record extra
// context around a run.
func (r *Runner) Log() *logging.Logger {
	return r.log
}

// Run executes the pipeline for one session. It always returns a
// summary; errors inside the pipeline are logged and absorbed.
func (r *Runner) Run(ctx context.Context) Summary {
	p := r.p
	start := time.Now()
	r.log.Log("INFO", "init", "learning run started", map[string]any{
		"session_id": p.SessionID,
		"project":    p.Project,
	})

	if !llm.Available() {
		r.log.Log("INFO", "checking_gateway", "credential not set, learning disabled", nil)
		return Summary{Status: store.StatusSkipped, Reason: ReasonGatewayUnavailable}
	}

	data, err := conversation.ReadBySessionID(p.Project, p.SessionID)
	if err != nil {
		r.log.Error("reading_conversation", "conversation read failed", err)
		return Summary{Status: store.StatusSkipped, Reason: ReasonNoConversation}
	}
	if data == nil || len(data.Events) == 0 {
		r.log.Log("INFO", "reading_conversation", "no conversation found for session", nil)
		return Summary{Status: store.StatusSkipped, Reason: ReasonNoConversation}
	}

	if !conversation.HasEnoughPrompts(data, r.cfg.MinPrompts) {
		r.log.Log("INFO", "checking_threshold", "insufficient prompt count", map[string]any{
			"prompts":  len(data.UserPrompts),
			"required": r.cfg.MinPrompts,
		})
		return Summary{Status: store.StatusSkipped, Reason: ReasonInsufficientPrompts}
	}

	text := conversation.RecentText(data, r.cfg.MaxEvents)

	filterStart := time.Now()
	filtered := redact.Filter(text)
	r.log.Step("filtering", "sensitive information filtered", map[string]any{
		"original_length": len(text),
		"filtered_length": len(filtered),
	}, filterStart)

	llmStart := time.Now()
	candidates := r.gateway.AnalyzeIdeas(ctx, filtered)
	r.log.Step("calling_llm_for_ideas", "analysis completed", map[string]any{
		"ideas_count": len(candidates),
	}, llmStart)

	if len(candidates) == 0 {
		r.log.Log("INFO", "processing_ideas", "no ideas identified from this session", nil)
		return Summary{Status: store.StatusSkipped, Reason: ReasonNoIdeas}
	}

	summary := r.processIdeas(ctx, p, candidates)
	summary.Status = store.StatusCompleted

	ready := len(idea.NewStore(p.Project, r.storeOptions()).Ready())
	r.log.Step("logging_summary", "learning run completed", map[string]any{
		"ideas_found":     summary.IdeasFound,
		"ideas_new":       summary.IdeasNew,
		"ideas_promoted":  summary.IdeasPromoted,
		"skills_created":  summary.SkillsCreated,
		"skills_merged":   summary.SkillsMerged,
		"failures":        summary.Failures,
		"ready_for_skill": ready,
	}, start)
	return summary
}

// RunDirect executes the manual single-session mode: skills are
// extracted straight from the transcript with no idea accumulation. The
// same entry gates apply as in Run.
func (r *Runner) RunDirect(ctx context.Context) Summary {
	p := r.p
	start := time.Now()
	r.log.Log("INFO", "init", "direct learning run started", map[string]any{
		"session_id": p.SessionID,
		"project":    p.Project,
	})

	if !llm.Available() {
		r.log.Log("INFO", "checking_gateway", "credential not set, learning disabled", nil)
		return Summary{Status: store.StatusSkipped, Reason: ReasonGatewayUnavailable}
	}

	data, err := conversation.ReadBySessionID(p.Project, p.SessionID)
	if err != nil || data == nil || len(data.Events) == 0 {
		r.log.Log("INFO", "reading_conversation", "no conversation found for session", nil)
		return Summary{Status: store.StatusSkipped, Reason: ReasonNoConversation}
	}

	if !conversation.HasEnoughPrompts(data, r.cfg.MinPrompts) {
		r.log.Log("INFO", "checking_threshold", "insufficient prompt count", map[string]any{
			"prompts":  len(data.UserPrompts),
			"required": r.cfg.MinPrompts,
		})
		return Summary{Status: store.StatusSkipped, Reason: ReasonInsufficientPrompts}
	}

	filtered := redact.Filter(conversation.RecentText(data, r.cfg.MaxEvents))

	llmStart := time.Now()
	results := r.gateway.DirectSkills(ctx, filtered)
	r.log.Step("calling_llm_for_skills", "direct extraction completed", map[string]any{
		"skills_count": len(results),
	}, llmStart)

	if len(results) == 0 {
		return Summary{Status: store.StatusSkipped, Reason: ReasonNoIdeas}
	}

	summary := Summary{Status: store.StatusCompleted, IdeasFound: len(results)}
	for _, result := range results {
		outcome, err := skill.WriteWithDedup(app.SkillsDir(p.Project), result, r.cfg.DedupEnabled, skill.MergeOptions{
			NameThreshold:    r.cfg.MergeSimilarity,
			KeywordThreshold: r.cfg.KeywordOverlap,
		})
		if err != nil {
			r.log.Error("writing_skills", "skill write failed", err)
			summary.Failures++
			continue
		}
		if outcome.Merged {
			summary.SkillsMerged++
		} else {
			summary.SkillsCreated++
		}
	}

	r.log.Step("logging_summary", "direct learning run completed", map[string]any{
		"skills_created": summary.SkillsCreated,
		"skills_merged":  summary.SkillsMerged,
		"failures":       summary.Failures,
	}, start)
	return summary
}

func (r *Runner) storeOptions() idea.Options {
	return idea.Options{
		Threshold:       r.cfg.SkillThreshold,
		TitleSimilarity: r.cfg.IdeaSimilarity,
		KeywordOverlap:  r.cfg.KeywordOverlap,
	}
}

// processIdeas folds every candidate into the idea store, then drains
// the synthesis queue sequentially. One idea's failure never blocks the
// rest of the queue.
func (r *Runner) processIdeas(ctx context.Context, p Params, candidates []idea.Candidate) Summary {
	ideas := idea.NewStore(p.Project, r.storeOptions())
	summary := Summary{IdeasFound: len(candidates)}

	var queue []*idea.Idea
	for _, c := range candidates {
		res, err := ideas.AddOrUpdate(c, p.SessionID, c.Evidence)
		if err != nil {
			r.log.Error("processing_ideas", "idea store update failed", err)
			summary.Failures++
			continue
		}
		if res.IsNew {
			summary.IdeasNew++
		}
		if res.ReachedThreshold {
			queue = append(queue, res.Idea)
		}
	}

	for _, i := range queue {
		if r.synthesize(ctx, p, ideas, i, &summary) {
			summary.IdeasPromoted++
		}
	}
	return summary
}

// synthesize turns one ready idea into a skill file. When the gateway
// fails, the accumulated idea metadata becomes a deterministic fallback
// skill so five observations are never silently discarded. The idea is
// removed only after a skill file actually landed on disk.
func (r *Runner) synthesize(ctx context.Context, p Params, ideas *idea.Store, i *idea.Idea, summary *Summary) bool {
	start := time.Now()

	instances, err := ideas.ListInstances(i.ID)
	if err != nil {
		r.log.Error("synthesizing_skills", "load instances failed", err)
	}

	result := r.gateway.SynthesizeSkill(ctx, i, instances)
	if result == nil {
		r.log.Log("WARN", "synthesizing_skills", "synthesis failed, using fallback skill", map[string]any{
			"idea_id": i.ID,
		})
		summary.Failures++
		result = skill.DefaultResult(i.Title, i.ID, i.Trigger, i.Pattern, i.Keywords)
	}

	outcome, err := skill.WriteWithDedup(app.SkillsDir(p.Project), result, r.cfg.DedupEnabled, skill.MergeOptions{
		NameThreshold:    r.cfg.MergeSimilarity,
		KeywordThreshold: r.cfg.KeywordOverlap,
	})
	if err != nil {
		r.log.Error("synthesizing_skills", "skill write failed", err)
		summary.Failures++
		return false
	}

	if outcome.Merged {
		summary.SkillsMerged++
	} else {
		summary.SkillsCreated++
	}

	if err := ideas.Remove(i.ID); err != nil {
		r.log.Error("synthesizing_skills", "idea removal failed", err)
	}
	r.log.Step("synthesizing_skills", "idea converted to skill", map[string]any{
		"idea_id":    i.ID,
		"skill_path": outcome.Path,
		"action":     outcome.Action,
	}, start)
	return true
}
