package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/dataloader"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/markdown"
	"github.com/UkralStul/blog-service/internal/web"
)

// render writes page with status 200, or a 500 page if it cannot be rendered.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data *web.HTMLData) {
	if err := s.renderPage(w, r, http.StatusOK, page, data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, data *web.HTMLData) error {
	if data == nil {
		data = &web.HTMLData{}
	}
	data.Path = r.URL.Path
	if data.CurrentUser == nil {
		data.CurrentUser = auth.CurrentUser(r.Context())
	}
	data.Flash = s.auth.PopFlash(r.Context())

	buf := new(bytes.Buffer)
	if err := s.pages.Render(buf, page, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// postViews attaches authors to posts with a single batched lookup.
func postViews(ctx context.Context, posts []*domain.Post) ([]*web.PostView, error) {
	ids := make([]int, len(posts))
	for i, p := range posts {
		ids[i] = p.AuthorID
	}
	authors, err := dataloader.For(ctx).Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]*web.PostView, len(posts))
	for i, p := range posts {
		views[i] = &web.PostView{Post: p, Author: authors[p.AuthorID]}
	}
	return views, nil
}

// postPage loads everything the post page shows: author, rendered body and
// comments with their authors.
func (s *Server) postPage(ctx context.Context, post *domain.Post) (*web.PostView, []*web.CommentView, error) {
	comments, err := s.store.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}

	ids := []int{post.AuthorID}
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := dataloader.For(ctx).Users(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	body, err := markdown.Render(post.Body)
	if err != nil {
		return nil, nil, err
	}

	views := make([]*web.CommentView, len(comments))
	for i, c := range comments {
		views[i] = &web.CommentView{Comment: c, Author: authors[c.AuthorID]}
	}
	return &web.PostView{Post: post, Author: authors[post.AuthorID], BodyHTML: body}, views, nil
}
