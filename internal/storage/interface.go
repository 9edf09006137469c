package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/blog-service/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateTitle = errors.New("a post with this title already exists")
)

// Storage defines the contract for blog stores.
type Storage interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id int) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	GetPosts(ctx context.Context) ([]*domain.Post, error)
	GetPostByID(ctx context.Context, id int) (*domain.Post, error)
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// DeletePost removes the post together with its comments.
	DeletePost(ctx context.Context, id int) error

	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetCommentByID(ctx context.Context, id int) (*domain.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID int) ([]*domain.Comment, error)
	DeleteComment(ctx context.Context, id int) error

	// Used by the dataloader.
	GetUsersByIDs(ctx context.Context, ids []int) (map[int]*domain.User, error)
}
