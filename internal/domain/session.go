package domain

import "time"

// Session context values. FAQ conversations are anonymous and never
// persisted as sessions; member sessions belong to exactly one user.
const (
	SessionContextFAQ    = "faq"
	SessionContextMember = "member"
)

// MaxSessionTitleLen bounds user-settable session titles.
const MaxSessionTitleLen = 120

// Session is a persisted conversation owned by one authenticated user.
type Session struct {
	SessionID string
	UserID    string
	Context   string
	Title     string
	HandoffAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionSummary is the list-view shape of a session.
type SessionSummary struct {
	SessionID          string
	Title              string
	LastMessagePreview string
	UpdatedAt          time.Time
}

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// MessageSource attributes part of a bot answer to a knowledge entry.
type MessageSource struct {
	Title string  `json:"title"`
	Score float32 `json:"score"`
	Scope string  `json:"scope,omitempty"`
}

// Message is one entry in a session transcript. Messages are append-only
// and ordered by CreatedAt within a session.
type Message struct {
	ID                 string
	SessionID          string
	Sender             string
	Content            string
	Sources            []MessageSource
	ClientMsgID        string
	ReplyToClientMsgID string
	CreatedAt          time.Time
}
