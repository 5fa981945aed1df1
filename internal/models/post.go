// Package models contains the canonical data structures exchanged with the
// campus-info backend and the error taxonomy shared across the client core.
package models

import (
	"encoding/json"
	"time"
)

// Post is the canonical shape of a post after normalization.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Image     string    `json:"image,omitempty"`
	LikeCount int       `json:"like_count"`
	Liked     bool      `json:"liked"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        idField     `json:"id"`
		PK        idField     `json:"pk"`
		Title     string      `json:"title"`
		Content   string      `json:"content"`
		Body      string      `json:"body"`
		Text      string      `json:"text"`
		Author    authorField `json:"author"`
		User      authorField `json:"user"`
		CreatedAt timeField   `json:"created_at"`
		CreatedA2 timeField   `json:"createdAt"`
		Date      timeField   `json:"date"`
		Timestamp timeField   `json:"timestamp"`
		Image     string      `json:"image"`
		ImageURL  string      `json:"image_url"`
		Media     string      `json:"media"`
		Likes     *int        `json:"likes_count"`
		LikeCount *int        `json:"like_count"`
		LikesAlt  *int        `json:"likes"`
		Liked     *bool       `json:"liked"`
		IsLiked   *bool       `json:"is_liked"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID, _ = firstID(raw.ID, raw.PK)
	p.Title = raw.Title
	p.Body = firstString(raw.Content, raw.Body, raw.Text)
	p.Author = firstString(raw.Author.display, raw.User.display)
	p.CreatedAt = firstTime(raw.CreatedAt, raw.CreatedA2, raw.Date, raw.Timestamp)
	p.Image = firstString(raw.Image, raw.ImageURL, raw.Media)

	p.LikeCount = 0
	for _, v := range []*int{raw.Likes, raw.LikeCount, raw.LikesAlt} {
		if v != nil {
			p.LikeCount = *v
			break
		}
	}
	p.Liked = false
	for _, v := range []*bool{raw.Liked, raw.IsLiked} {
		if v != nil {
			p.Liked = *v
			break
		}
	}
	return nil
}

// PostList accepts both a bare JSON array and the paginated envelope
// {"results": [...]} the listing endpoint sometimes returns.
type PostList []Post

func (l *PostList) UnmarshalJSON(data []byte) error {
	var posts []Post
	if err := json.Unmarshal(data, &posts); err == nil {
		*l = posts
		return nil
	}
	var envelope struct {
		Results []Post `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	*l = envelope.Results
	return nil
}

// LikeEntry is one element of the like-state listing: the like count and the
// current user's liked flag for a single post.
type LikeEntry struct {
	PostID    int64
	LikeCount int
	Liked     bool
}

func (e *LikeEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Post      idField `json:"post"`
		PostID    idField `json:"post_id"`
		Likes     *int    `json:"likes_count"`
		LikeCount *int    `json:"like_count"`
		LikesAlt  *int    `json:"likes"`
		Liked     *bool   `json:"liked"`
		IsLiked   *bool   `json:"is_liked"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.PostID, _ = firstID(raw.Post, raw.PostID)
	e.LikeCount = 0
	for _, v := range []*int{raw.Likes, raw.LikeCount, raw.LikesAlt} {
		if v != nil {
			e.LikeCount = *v
			break
		}
	}
	e.Liked = false
	for _, v := range []*bool{raw.Liked, raw.IsLiked} {
		if v != nil {
			e.Liked = *v
			break
		}
	}
	return nil
}
