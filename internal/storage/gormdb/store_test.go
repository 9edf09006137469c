package gormdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	store, err := New("sqlite://"+filepath.Join(t.TempDir(), "posts.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDialector(t *testing.T) {
	tests := []struct {
		dsn  string
		name string
	}{
		{"postgres://u:p@localhost:5432/blog", "postgres"},
		{"postgresql://u:p@localhost/blog", "postgres"},
		{"host=localhost user=u dbname=blog", "postgres"},
		{"sqlite:///posts.db", "sqlite"},
		{"sqlite://posts.db", "sqlite"},
		{"posts.db", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, err := Dialector(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}

	_, err := Dialector("")
	assert.Error(t, err)
}

func TestStore_Blog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, &domain.User{Name: "Admin", Email: "admin@x.com", Password: "hash"})
	require.NoError(t, err)
	assert.Equal(t, domain.AdminID, admin.ID)

	reader, err := store.CreateUser(ctx, &domain.User{Name: "A", Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, &domain.User{Name: "A2", Email: "a@x.com", Password: "hash"})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	post, err := store.CreatePost(ctx, &domain.Post{
		AuthorID: admin.ID, Title: "T", Subtitle: "S", Body: "B",
		ImgURL: "https://example.com/t.png", Date: "October 16, 2026",
	})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	_, err = store.CreatePost(ctx, &domain.Post{AuthorID: admin.ID, Title: "T", Subtitle: "S", Body: "B", ImgURL: "u", Date: "d"})
	assert.ErrorIs(t, err, storage.ErrDuplicateTitle)

	comment, err := store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "hi"})
	require.NoError(t, err)

	_, err = store.CreateComment(ctx, &domain.Comment{PostID: 999, AuthorID: reader.ID, Text: "hi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	comments, err := store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, reader.ID, comments[0].AuthorID)

	users, err := store.GetUsersByIDs(ctx, []int{admin.ID, reader.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	post.Title = "T2"
	post.Body = "edited"
	_, err = store.UpdatePost(ctx, post)
	require.NoError(t, err)
	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, "edited", got.Body)

	require.NoError(t, store.DeleteComment(ctx, comment.ID))
	assert.ErrorIs(t, store.DeleteComment(ctx, comment.ID), storage.ErrNotFound)

	_, err = store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "again"})
	require.NoError(t, err)
	require.NoError(t, store.DeletePost(ctx, post.ID))

	_, err = store.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	comments, err = store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	posts, err := store.GetPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestStore_GetUserByEmail_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_UpdatePost_DuplicateTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, &domain.User{Name: "Admin", Email: "admin@x.com", Password: "hash"})
	require.NoError(t, err)
	first, err := store.CreatePost(ctx, &domain.Post{AuthorID: admin.ID, Title: "First", Subtitle: "S", Body: "B", ImgURL: "u", Date: "d"})
	require.NoError(t, err)
	second, err := store.CreatePost(ctx, &domain.Post{AuthorID: admin.ID, Title: "Second", Subtitle: "S", Body: "B", ImgURL: "u", Date: "d"})
	require.NoError(t, err)

	second.Title = "First"
	second.Body = "changed"
	_, err = store.UpdatePost(ctx, second)
	assert.ErrorIs(t, err, storage.ErrDuplicateTitle)

	got, err := store.GetPostByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
	assert.Equal(t, "B", got.Body)

	// keeping its own title is not a conflict
	first.Body = "edited"
	_, err = store.UpdatePost(ctx, first)
	require.NoError(t, err)

	first.AuthorID = 999
	_, err = store.UpdatePost(ctx, first)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.UpdatePost(ctx, &domain.Post{ID: 999, AuthorID: admin.ID, Title: "Ghost"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_CommentAuthorMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin, err := store.CreateUser(ctx, &domain.User{Name: "Admin", Email: "admin@x.com", Password: "hash"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, &domain.Post{AuthorID: admin.ID, Title: "T", Subtitle: "S", Body: "B", ImgURL: "u", Date: "d"})
	require.NoError(t, err)

	_, err = store.CreateComment(ctx, &domain.Comment{PostID: post.ID, AuthorID: 999, Text: "hi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	comments, err := store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// a row left behind by a removed account
	require.NoError(t, store.db.Exec(
		"INSERT INTO comments (text, author_id, post_id) VALUES (?, ?, ?)", "orphan", 999, post.ID,
	).Error)

	comments, err = store.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, 999, comments[0].AuthorID)

	users, err := store.GetUsersByIDs(ctx, []int{admin.ID, comments[0].AuthorID})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NotContains(t, users, 999)
}
