package models

import (
	"encoding/json"
	"time"
)

// Comment is the canonical shape of a comment after normalization. PostID is
// always a number even when the server embeds the whole parent post object.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	// ParentID is non-zero for threaded replies.
	ParentID int64 `json:"parent_id,omitempty"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        idField     `json:"id"`
		PK        idField     `json:"pk"`
		Post      idField     `json:"post"`
		PostID    idField     `json:"post_id"`
		Content   string      `json:"content"`
		Body      string      `json:"body"`
		Text      string      `json:"text"`
		Author    authorField `json:"author"`
		User      authorField `json:"user"`
		CreatedAt timeField   `json:"created_at"`
		CreatedA2 timeField   `json:"createdAt"`
		Date      timeField   `json:"date"`
		Parent    idField     `json:"parent"`
		ParentID  idField     `json:"parent_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID, _ = firstID(raw.ID, raw.PK)
	c.PostID, _ = firstID(raw.Post, raw.PostID)
	c.Body = firstString(raw.Content, raw.Body, raw.Text)
	c.Author = firstString(raw.Author.display, raw.User.display)
	c.CreatedAt = firstTime(raw.CreatedAt, raw.CreatedA2, raw.Date)
	c.ParentID, _ = firstID(raw.Parent, raw.ParentID)
	return nil
}
