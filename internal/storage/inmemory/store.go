package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"
)

// Store реализует интерфейс Storage в памяти. Наружу отдаются только копии записей.
type Store struct {
	mu             sync.RWMutex
	users          map[int]*domain.User
	posts          map[int]*domain.Post
	comments       map[int]*domain.Comment
	commentsByPost map[int][]int // map[postID][]commentID
	nextUserID     int
	nextPostID     int
	nextCommentID  int
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:          make(map[int]*domain.User),
		posts:          make(map[int]*domain.Post),
		comments:       make(map[int]*domain.Comment),
		commentsByPost: make(map[int][]int),
	}
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, storage.ErrDuplicateEmail
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	stored := *user
	s.users[user.ID] = &stored
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, storage.ErrNotFound)
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []int) (map[int]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out := *u
			result[id] = &out
		}
	}
	return result, nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		return nil, fmt.Errorf("author %d: %w", post.AuthorID, storage.ErrNotFound)
	}
	if s.titleTaken(post.Title, 0) {
		return nil, storage.ErrDuplicateTitle
	}

	s.nextPostID++
	post.ID = s.nextPostID
	s.posts[post.ID] = copyPost(post)
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id int) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	return copyPost(post), nil
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allPosts := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		allPosts = append(allPosts, copyPost(p))
	}
	sort.Slice(allPosts, func(i, j int) bool {
		return allPosts[i].ID < allPosts[j].ID
	})
	return allPosts, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return nil, fmt.Errorf("post %d: %w", post.ID, storage.ErrNotFound)
	}
	if _, ok := s.users[post.AuthorID]; !ok {
		return nil, fmt.Errorf("author %d: %w", post.AuthorID, storage.ErrNotFound)
	}
	if s.titleTaken(post.Title, post.ID) {
		return nil, storage.ErrDuplicateTitle
	}
	s.posts[post.ID] = copyPost(post)
	return post, nil
}

func (s *Store) DeletePost(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	// Комментарии удаляются вместе с постом
	for _, cID := range s.commentsByPost[id] {
		delete(s.comments, cID)
	}
	delete(s.commentsByPost, id)
	delete(s.posts, id)
	return nil
}

// titleTaken проверяет, занят ли заголовок другим постом (кроме exceptID). Вызывать под mu.
func (s *Store) titleTaken(title string, exceptID int) bool {
	for _, p := range s.posts {
		if p.ID != exceptID && p.Title == title {
			return true
		}
	}
	return false
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка поста и автора
	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, fmt.Errorf("post %d: %w", comment.PostID, storage.ErrNotFound)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return nil, fmt.Errorf("author %d: %w", comment.AuthorID, storage.ErrNotFound)
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	stored := *comment
	stored.Author = nil
	s.comments[comment.ID] = &stored
	s.commentsByPost[comment.PostID] = append(s.commentsByPost[comment.PostID], comment.ID)
	return comment, nil
}

func (s *Store) GetCommentByID(ctx context.Context, id int) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, storage.ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID int) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentsByPost[postID]
	comments := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out := *c
			comments = append(comments, &out)
		}
	}
	return comments, nil
}

func (s *Store) DeleteComment(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return fmt.Errorf("comment %d: %w", id, storage.ErrNotFound)
	}
	ids := s.commentsByPost[c.PostID]
	for i, cID := range ids {
		if cID == id {
			s.commentsByPost[c.PostID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	delete(s.comments, id)
	return nil
}

func copyPost(p *domain.Post) *domain.Post {
	out := *p
	out.Author = nil
	out.Comments = nil
	return &out
}
