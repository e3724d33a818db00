package app

import "path/filepath"

// All persisted learning state lives under the project-local .claude directory.
// Nothing here is shared across projects.

// ConversationsDir returns <project>/.claude/conversations.
func ConversationsDir(project string) string {
	return filepath.Join(project, ".claude", "conversations")
}

// ConversationPath returns the per-session conversation log path.
func ConversationPath(project, sessionID string) string {
	return filepath.Join(ConversationsDir(project), "conversation-"+sessionID+".txt")
}

// IdeasDir returns <project>/.claude/ideas.
func IdeasDir(project string) string {
	return filepath.Join(project, ".claude", "ideas")
}

// SkillsDir returns <project>/.claude/skills/learn.
func SkillsDir(project string) string {
	return filepath.Join(project, ".claude", "skills", "learn")
}

// LearningLogDir returns <project>/.claude/logs/continuous-learning.
func LearningLogDir(project string) string {
	return filepath.Join(project, ".claude", "logs", "continuous-learning")
}

// LearningLogPath returns the per-session learning log path.
func LearningLogPath(project, sessionID string) string {
	return filepath.Join(LearningLogDir(project), "learning-"+sessionID+".log")
}
