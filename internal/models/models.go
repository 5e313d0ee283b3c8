package models

import "time"

// Post represents a generated post and its publishing state
type Post struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Published bool      `json:"published"`
	Timestamp time.Time `json:"timestamp"`
}

// PostState describes where a post sits in its lifecycle
type PostState string

const (
	StateDraftInEdit PostState = "draft-in-edit"
	StateUnpublished PostState = "unpublished"
	StatePublished   PostState = "published"
)

// State reports the lifecycle state of the post given the current post id.
// A published post reopened for editing is still reported as published.
func (p Post) State(currentID string) PostState {
	switch {
	case p.Published:
		return StatePublished
	case p.ID == currentID:
		return StateDraftInEdit
	default:
		return StateUnpublished
	}
}

// FindPost returns the index of the post with the given id, or -1
func FindPost(posts []Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

// PublishedCount returns how many posts in the list have been published
func PublishedCount(posts []Post) int {
	n := 0
	for _, p := range posts {
		if p.Published {
			n++
		}
	}
	return n
}
