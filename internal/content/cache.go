// Package content maintains the client-visible view of posts, comments and
// like state, reconciling it with server responses. All mutations go through
// the gateway client; on any failure the cache is left untouched.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"campusbuzz/internal/api"
	"campusbuzz/internal/models"
	"campusbuzz/internal/observability"
)

// Cache is the in-memory posts/comments/likes store. Safe for concurrent
// use; per-key sequence guards drop responses that resolve after a newer
// fetch for the same resource.
type Cache struct {
	mu       sync.RWMutex
	posts    []models.Post
	comments map[int64][]models.Comment

	api *api.Client
	log *observability.OpLogger

	postsSeq    seqGuard
	commentsSeq map[int64]*seqGuard
	seqMu       sync.Mutex
}

// NewCache builds an empty cache backed by the given gateway client.
func NewCache(client *api.Client, logger *observability.Logger) *Cache {
	return &Cache{
		comments:    make(map[int64][]models.Comment),
		api:         client,
		log:         observability.NewOpLogger("content", logger),
		commentsSeq: make(map[int64]*seqGuard),
	}
}

// seqGuard hands out monotonically increasing tickets per cache key. A
// completion commits only if no newer completion has already been applied.
type seqGuard struct {
	mu      sync.Mutex
	next    uint64
	applied uint64
}

func (g *seqGuard) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}

func (g *seqGuard) commit(ticket uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ticket <= g.applied {
		return false
	}
	g.applied = ticket
	return true
}

func (c *Cache) commentsGuard(postID int64) *seqGuard {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	g, ok := c.commentsSeq[postID]
	if !ok {
		g = &seqGuard{}
		c.commentsSeq[postID] = g
	}
	return g
}

// Posts returns a copy of the cached post list.
func (c *Cache) Posts() []models.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// Comments returns a copy of the cached comment list for postID.
func (c *Cache) Comments(postID int64) []models.Comment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Comment, len(c.comments[postID]))
	copy(out, c.comments[postID])
	return out
}

// FetchPosts GETs the posts listing and fully replaces the cached list. The
// response may be a bare array or a results envelope; both normalize to the
// same list. Ordering is server-provided and never re-sorted locally.
func (c *Cache) FetchPosts(ctx context.Context) ([]models.Post, error) {
	ticket := c.postsSeq.begin()

	var list models.PostList
	if err := c.api.GetJSON(ctx, "post/posts/", &list); err != nil {
		c.log.LogError(ctx, "fetch_posts", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.postsSeq.commit(ticket) {
		c.log.LogStale(ctx, "fetch_posts", 0)
		return append([]models.Post(nil), c.posts...), nil
	}
	c.posts = []models.Post(list)
	return append([]models.Post(nil), c.posts...), nil
}

// CreatePostInput is the payload for CreatePost. Image is optional; when set
// the request goes out as multipart form data.
type CreatePostInput struct {
	Title   string
	Content string
	Image   *api.FileAttachment
}

// CreatePost creates a post and prepends it to the cached list. Title and
// content must be non-empty after trimming; validation failures never issue a
// request.
func (c *Cache) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Content)
	if title == "" || body == "" {
		return nil, models.NewValidationError("title and content are required")
	}

	var post models.Post
	if in.Image != nil {
		fields := map[string]string{"title": title, "content": body}
		if err := c.api.PostMultipart(ctx, "post/posts/", fields, in.Image, &post); err != nil {
			c.log.LogError(ctx, "create_post", err)
			return nil, err
		}
	} else {
		payload := map[string]string{"title": title, "content": body}
		if err := c.api.PostJSON(ctx, "post/posts/", payload, &post); err != nil {
			c.log.LogError(ctx, "create_post", err)
			return nil, err
		}
	}

	c.mu.Lock()
	c.posts = append([]models.Post{post}, c.posts...)
	c.mu.Unlock()
	return &post, nil
}

// FetchComments GETs the comments listing and replaces the cache entry for
// postID. The endpoint is unscoped and returns comments for every post, so
// filtering by the normalized post id here is mandatory, not defensive.
func (c *Cache) FetchComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	ticket := c.commentsGuard(postID).begin()

	var all []models.Comment
	if err := c.api.GetJSON(ctx, "post/comments/", &all); err != nil {
		c.log.LogError(ctx, "fetch_comments", err)
		return nil, err
	}

	filtered := make([]models.Comment, 0, len(all))
	for _, comment := range all {
		if comment.PostID == postID {
			filtered = append(filtered, comment)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.commentsGuard(postID).commit(ticket) {
		c.log.LogStale(ctx, "fetch_comments", postID)
		return append([]models.Comment(nil), c.comments[postID]...), nil
	}
	c.comments[postID] = filtered
	return append([]models.Comment(nil), filtered...), nil
}

// CreateComment POSTs a comment and prepends it to the cache entry for
// postID. Empty text after trimming is a no-op; no request goes out.
func (c *Cache) CreateComment(ctx context.Context, postID int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	payload := map[string]any{"post": postID, "content": text}
	var comment models.Comment
	if err := c.api.PostJSON(ctx, "post/comments/", payload, &comment); err != nil {
		c.log.LogError(ctx, "create_comment", err)
		return nil, err
	}
	if comment.PostID == 0 {
		comment.PostID = postID
	}

	c.mu.Lock()
	c.comments[postID] = append([]models.Comment{comment}, c.comments[postID]...)
	c.mu.Unlock()
	return &comment, nil
}

// ToggleLike POSTs a like toggle for postID. When the toggle response itself
// carries the resulting like state it is reconciled immediately; otherwise
// the caller follows up with FetchLikes. Only the affected post's like fields
// change.
func (c *Cache) ToggleLike(ctx context.Context, postID int64) error {
	payload := map[string]any{"post": postID}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.api.Do(ctx, http.MethodPost, "post/likes/", bytes.NewReader(encoded), "application/json")
	if err != nil {
		c.log.LogError(ctx, "toggle_like", err)
		return err
	}

	if resp.JSON && len(resp.Body) > 0 {
		var entry models.LikeEntry
		if decodeErr := json.Unmarshal(resp.Body, &entry); decodeErr == nil && entry.PostID == postID {
			c.applyLike(entry)
		}
	}
	return nil
}

// FetchLikes GETs like state for all posts and merges it into the cached
// list by post id. Posts missing from the response keep their prior values.
func (c *Cache) FetchLikes(ctx context.Context) error {
	var entries []models.LikeEntry
	if err := c.api.GetJSON(ctx, "post/likes/", &entries); err != nil {
		c.log.LogError(ctx, "fetch_likes", err)
		return err
	}

	for _, entry := range entries {
		c.applyLike(entry)
	}
	return nil
}

func (c *Cache) applyLike(entry models.LikeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.posts {
		if c.posts[i].ID == entry.PostID {
			c.posts[i].LikeCount = entry.LikeCount
			c.posts[i].Liked = entry.Liked
			return
		}
	}
}
