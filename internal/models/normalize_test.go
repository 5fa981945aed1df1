package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Unmarshal_FieldAliases(t *testing.T) {
	t.Parallel()

	t.Run("pk and text aliases", func(t *testing.T) {
		t.Parallel()
		var p Post
		err := json.Unmarshal([]byte(`{"pk": 7, "title": "Exam", "text": "Hall A, 9am", "author": "registrar"}`), &p)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.ID)
		assert.Equal(t, "Hall A, 9am", p.Body)
		assert.Equal(t, "registrar", p.Author)
	})

	t.Run("nested author object", func(t *testing.T) {
		t.Parallel()
		var p Post
		err := json.Unmarshal([]byte(`{"id": 1, "content": "hi", "author": {"username": "dean", "name": "Dean of Students"}}`), &p)
		require.NoError(t, err)
		assert.Equal(t, "dean", p.Author)
	})

	t.Run("author object without username falls back to name", func(t *testing.T) {
		t.Parallel()
		var p Post
		err := json.Unmarshal([]byte(`{"id": 1, "author": {"name": "Faculty Officer"}}`), &p)
		require.NoError(t, err)
		assert.Equal(t, "Faculty Officer", p.Author)
	})

	t.Run("like defaults", func(t *testing.T) {
		t.Parallel()
		var p Post
		err := json.Unmarshal([]byte(`{"id": 3, "content": "no like info"}`), &p)
		require.NoError(t, err)
		assert.Equal(t, 0, p.LikeCount)
		assert.False(t, p.Liked)
	})

	t.Run("likes_count and liked", func(t *testing.T) {
		t.Parallel()
		var p Post
		err := json.Unmarshal([]byte(`{"id": 3, "likes_count": 12, "liked": true}`), &p)
		require.NoError(t, err)
		assert.Equal(t, 12, p.LikeCount)
		assert.True(t, p.Liked)
	})

	t.Run("timestamp formats", func(t *testing.T) {
		t.Parallel()
		var p Post
		err := json.Unmarshal([]byte(`{"id": 1, "created_at": "2025-08-06"}`), &p)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC), p.CreatedAt)

		var p2 Post
		err = json.Unmarshal([]byte(`{"id": 2, "date": "2025-08-06T09:30:00Z"}`), &p2)
		require.NoError(t, err)
		assert.Equal(t, 9, p2.CreatedAt.Hour())
	})
}

func TestPostList_ArrayAndEnvelope(t *testing.T) {
	t.Parallel()

	bare := []byte(`[{"id": 1, "title": "a", "content": "x"}, {"id": 2, "title": "b", "content": "y"}]`)
	enveloped := []byte(`{"results": [{"id": 1, "title": "a", "content": "x"}, {"id": 2, "title": "b", "content": "y"}]}`)

	var fromBare, fromEnvelope PostList
	require.NoError(t, json.Unmarshal(bare, &fromBare))
	require.NoError(t, json.Unmarshal(enveloped, &fromEnvelope))

	assert.Equal(t, fromBare, fromEnvelope)
	require.Len(t, fromBare, 2)
	assert.Equal(t, "a", fromBare[0].Title)
}

func TestComment_Unmarshal_PolymorphicPost(t *testing.T) {
	t.Parallel()

	t.Run("post as number", func(t *testing.T) {
		t.Parallel()
		var c Comment
		err := json.Unmarshal([]byte(`{"id": 10, "post": 42, "content": "nice"}`), &c)
		require.NoError(t, err)
		assert.Equal(t, int64(42), c.PostID)
		assert.Equal(t, "nice", c.Body)
	})

	t.Run("post as embedded object", func(t *testing.T) {
		t.Parallel()
		var c Comment
		err := json.Unmarshal([]byte(`{"id": 11, "post": {"id": 42, "title": "parent"}, "content": "also nice"}`), &c)
		require.NoError(t, err)
		assert.Equal(t, int64(42), c.PostID)
	})

	t.Run("threaded reply parent", func(t *testing.T) {
		t.Parallel()
		var c Comment
		err := json.Unmarshal([]byte(`{"id": 12, "post": 42, "parent": 10, "content": "re"}`), &c)
		require.NoError(t, err)
		assert.Equal(t, int64(10), c.ParentID)
	})
}

func TestLikeEntry_Unmarshal(t *testing.T) {
	t.Parallel()

	var e LikeEntry
	err := json.Unmarshal([]byte(`{"post": 42, "likes_count": 4, "liked": true}`), &e)
	require.NoError(t, err)
	assert.Equal(t, int64(42), e.PostID)
	assert.Equal(t, 4, e.LikeCount)
	assert.True(t, e.Liked)
}

func TestAppError_CodeOf(t *testing.T) {
	t.Parallel()

	err := NewRequestFailedError(403, `{"detail": "forbidden"}`)
	assert.Equal(t, CodeRequestFailed, CodeOf(err))
	assert.Equal(t, 403, err.Status)

	wrapped := NewNetworkError(assert.AnError)
	assert.Equal(t, CodeNetwork, CodeOf(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)

	assert.Empty(t, CodeOf(assert.AnError))
}
