// Package idea persists behavioral patterns observed across sessions.
// Each project keeps a JSON index of ideas plus one immutable instance
// file per observation; once an idea accumulates enough observations it
// becomes eligible for skill synthesis.
package idea

import "time"

// Version of the index file format.
const Version = "1.0"

// Categories an idea may belong to.
var Categories = []string{
	"user-corrections",
	"error-resolutions",
	"repeated-workflows",
	"tool-preferences",
	"file-patterns",
}

// Idea is one accumulating behavioral pattern, scoped to a project.
type Idea struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Trigger   string    `json:"trigger"`
	Pattern   string    `json:"pattern"`
	Keywords  []string  `json:"keywords"`
}

// Index is the on-disk idea index, one per project.
type Index struct {
	Version string  `json:"version"`
	Ideas   []*Idea `json:"ideas"`
}

// NewIndex returns a fresh empty index.
func NewIndex() *Index {
	return &Index{Version: Version, Ideas: []*Idea{}}
}

// Candidate is an idea as proposed by the analysis gateway, before it is
// matched against the index.
type Candidate struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Trigger  string   `json:"trigger"`
	Pattern  string   `json:"pattern"`
	Evidence string   `json:"evidence"`
	Keywords []string `json:"keywords"`
}

// Instance is one immutable observation contributing to an idea.
type Instance struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Evidence  string    `json:"evidence"`
}
