package entity

import "time"

// BlogPost is owned by a user; all of a user's posts are removed before the
// user record itself is deleted.
type BlogPost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reaction types.
const (
	ReactionUpvote   = "upvote"
	ReactionDownvote = "downvote"
)

// Reaction is a single user's reaction to a post, one per (blog, user).
type Reaction struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blog_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// BlogWithReactions is a post together with its aggregated reaction counts.
// Popularity is upvotes - downvotes and drives the popularity sort.
type BlogWithReactions struct {
	BlogPost
	Upvotes    int `json:"upvotes"`
	Downvotes  int `json:"downvotes"`
	Popularity int `json:"popularity"`
}

// BlogHistory is an append-only record of a post's content before an update
// or deletion.
type BlogHistory struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blog_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Action    string    `json:"action"` // updated or deleted
	CreatedAt time.Time `json:"created_at"`
}
