package core

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder values shown while metadata for an optimistic insert is pending.
const (
	PlaceholderTitle  = "読み込み中..."
	PlaceholderAuthor = "..."
)

// Item is a single entry in the playback queue.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	PlayCount   int        `json:"playCount"`
	AddedAt     time.Time  `json:"addedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	// Token identifies this entry independent of its position. It is
	// assigned on insert and never persisted.
	Token string `json:"-"`
}

// NewItem creates an item stamped with the given insertion time.
func NewItem(id, title, author string, now time.Time) Item {
	return Item{
		ID:      id,
		Title:   title,
		Author:  author,
		AddedAt: now,
		Token:   NewToken(),
	}
}

// NewToken returns a fresh identity token.
func NewToken() string {
	return uuid.NewString()
}

// IsPlaceholder reports whether the item still carries placeholder metadata.
func (it *Item) IsPlaceholder() bool {
	return it.Title == PlaceholderTitle || it.Author == PlaceholderAuthor
}

// Clone returns a shallow copy with a fresh token and insertion time.
func (it Item) Clone(now time.Time) Item {
	c := it
	c.Token = NewToken()
	c.AddedAt = now
	if it.PublishedAt != nil {
		p := *it.PublishedAt
		c.PublishedAt = &p
	}
	return c
}
