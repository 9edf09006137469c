package gormdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store implements storage.Storage on top of gorm (SQLite or PostgreSQL).
type Store struct {
	db *gorm.DB
}

// Dialector picks the gorm driver for dsn. postgres:// URLs and keyword DSNs
// ("host=... dbname=...") go to PostgreSQL; sqlite:// URLs and plain paths go
// to SQLite.
func Dialector(dsn string) (gorm.Dialector, error) {
	switch {
	case dsn == "":
		return nil, errors.New("empty database connection string")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite:///"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:///")), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// New opens the database behind dsn and creates missing tables.
func New(dsn string, verbose bool) (*Store, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return storage.ErrDuplicateEmail
		}
		return tx.Omit(clause.Associations).Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, storage.ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err, "user %q", email)
	}
	return &user, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []int) (map[int]*domain.User, error) {
	var users []*domain.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	result := make(map[int]*domain.User, len(users))
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &domain.User{}, post.AuthorID); err != nil {
			return fmt.Errorf("author %d: %w", post.AuthorID, err)
		}
		if err := titleFree(tx, post.Title, 0); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(post).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, storage.ErrDuplicateTitle
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id int) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		// gorm returns gorm.ErrRecordNotFound for a missing row
		return nil, notFound(err, "post %d", id)
	}
	return &post, nil
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).Order("id ASC").Find(&posts).Error
	return posts, err
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	// read-check-write in one transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &domain.Post{}, post.ID); err != nil {
			return fmt.Errorf("post %d: %w", post.ID, err)
		}
		if err := exists(tx, &domain.User{}, post.AuthorID); err != nil {
			return fmt.Errorf("author %d: %w", post.AuthorID, err)
		}
		if err := titleFree(tx, post.Title, post.ID); err != nil {
			return err
		}
		return tx.Model(&domain.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
			"title":     post.Title,
			"subtitle":  post.Subtitle,
			"body":      post.Body,
			"img_url":   post.ImgURL,
			"author_id": post.AuthorID,
			"date":      post.Date,
		}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, storage.ErrDuplicateTitle
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) DeletePost(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &domain.Post{}, id); err != nil {
			return fmt.Errorf("post %d: %w", id, err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, id).Error
	})
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &domain.Post{}, comment.PostID); err != nil {
			return fmt.Errorf("post %d: %w", comment.PostID, err)
		}
		if err := exists(tx, &domain.User{}, comment.AuthorID); err != nil {
			return fmt.Errorf("author %d: %w", comment.AuthorID, err)
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id int) (*domain.Comment, error) {
	var comment domain.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "comment %d", id)
	}
	return &comment, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID int) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (s *Store) DeleteComment(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// exists returns storage.ErrNotFound when no row of model has the given id.
func exists(tx *gorm.DB, model any, id int) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func titleFree(tx *gorm.DB, title string, exceptID int) error {
	var count int64
	if err := tx.Model(&domain.Post{}).Where("title = ? AND id <> ?", title, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrDuplicateTitle
	}
	return nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, storage.ErrNotFound)...)
	}
	return err
}
