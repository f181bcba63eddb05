package internal

import (
	"strings"
	"time"
)

// Mode selects whether the source text is simplified before translation.
type Mode string

const (
	ModeFriendly Mode = "friendly"
	ModeFormal   Mode = "formal"
)

// ParseMode maps client input onto a Mode. Anything unrecognised is formal,
// i.e. literal passthrough.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeFriendly)) {
		return ModeFriendly
	}
	return ModeFormal
}

// HistoryRecord is a saved translation owned by a single user.
type HistoryRecord struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"user"`
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
	Lang       string    `json:"lang"`
	CreatedAt  time.Time `json:"createdAt"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
