package domain

import "time"

// KnowledgeEntry is a titled piece of corpus content tagged with an
// access scope. Entries are immutable except via explicit update.
type KnowledgeEntry struct {
	ID        string
	Title     string
	Content   string
	Scope     Scope
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchResult is a knowledge entry returned from relevance-ranked search.
type SearchResult struct {
	ID      string
	Title   string
	Content string
	Scope   Scope
	Score   float32
}
