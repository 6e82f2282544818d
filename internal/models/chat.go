package models

import "time"

// ChatMessage represents one entry in the global chat feed. Messages are
// append-only; there is no edit or delete path.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
