package llm

import (
	"fmt"
	"strings"

	"github.com/dotcommander/skillforge/internal/idea"
)

const analyzePromptFormat = `You are reviewing a transcript of a coding session to spot behavioral patterns worth remembering.

Look for patterns in these categories only:
- user-corrections: the user corrected the assistant's approach and the correction stuck
- error-resolutions: a specific error was hit and a specific fix resolved it
- repeated-workflows: the same multi-step routine was performed more than once
- tool-preferences: the user consistently preferred one tool or flag over alternatives
- file-patterns: a naming or file-layout convention was followed deliberately

Transcript:
%s

Respond with ONLY a JSON object, no prose, in exactly this shape:
{"ideas": [{"title": "short imperative title", "category": "one of the five categories", "trigger": "when this pattern applies", "pattern": "what to do", "evidence": "what in this transcript shows it", "keywords": ["2-5", "keywords"]}]}

Return {"ideas": []} if nothing recurs. Do not invent patterns from a single ambiguous event.`

func analyzePrompt(transcript string) string {
	return fmt.Sprintf(analyzePromptFormat, transcript)
}

const synthesizePromptFormat = `A behavioral pattern has been observed across %d separate coding sessions. Turn it into a reusable skill.

Pattern:
- title: %s
- category: %s
- trigger: %s
- pattern: %s
- keywords: %s

Observations, oldest first:
%s

Respond with ONLY a JSON object, no prose, in exactly this shape:
{"name": "skill name", "filename": "kebab-case-filename", "description": "one sentence", "problem": "the situation this solves", "solution": "the approach", "steps": ["concrete step", "..."], "keywords": ["..."]}

Steps must be concrete actions someone could follow without the original sessions. 3 to 7 steps.`

const directPromptFormat = `You are reviewing a transcript of a single coding session. Extract any reusable skills: cases where the user solved a problem, optimized a workflow, or reached a goal in a way worth repeating.

Transcript:
%s

Respond with ONLY a JSON object, no prose, in exactly this shape:
{"skills": [{"name": "skill name", "description": "one sentence", "problem": "the situation this solves", "solution": "the approach", "steps": ["concrete step", "..."], "keywords": ["2-5", "keywords"]}]}

Return {"skills": []} if the session contains nothing worth keeping. Only use what this transcript shows.`

func directPrompt(transcript string) string {
	return fmt.Sprintf(directPromptFormat, transcript)
}

func synthesizePrompt(i *idea.Idea, instances []idea.Instance) string {
	var obs strings.Builder
	for n, inst := range instances {
		fmt.Fprintf(&obs, "%d. [%s] %s\n", n+1, inst.Timestamp.Format("2006-01-02"), inst.Evidence)
	}
	if obs.Len() == 0 {
		obs.WriteString("(no instance records survived; synthesize from the pattern alone)\n")
	}
	return fmt.Sprintf(synthesizePromptFormat,
		i.Count, i.Title, i.Category, i.Trigger, i.Pattern,
		strings.Join(i.Keywords, ", "), obs.String())
}
