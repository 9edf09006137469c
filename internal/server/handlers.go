package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/UkralStul/blog-service/internal/auth"
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/forms"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/web"
	"github.com/go-chi/chi/v5"
)

type key int

const postKey key = iota

// postCtx loads the post named by {postID} into the context; 404 if not found.
func (s *Server) postCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "postID"))
		if err != nil {
			s.notFound(w, r)
			return
		}
		post, err := s.store.GetPostByID(r.Context(), id)
		if err != nil {
			s.fail(w, r, lookupError(err))
			return
		}
		ctx := context.WithValue(r.Context(), postKey, post)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func postFrom(ctx context.Context) *domain.Post {
	return ctx.Value(postKey).(*domain.Post)
}

func (s *Server) today() string {
	return s.now().Format(domain.DateLayout)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.GetPosts(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	views, err := postViews(r.Context(), posts)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "index.html", &web.HTMLData{Posts: views})
}

func (s *Server) about(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "about.html", &web.HTMLData{Title: "About"})
}

func (s *Server) contact(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "contact.html", &web.HTMLData{Title: "Contact"})
}

// showPost renders a post with its comments and accepts new comments.
func (s *Server) showPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post := postFrom(ctx)

	var form forms.Comment
	var errs forms.Errors
	if r.Method == http.MethodPost {
		var err error
		errs, err = forms.Decode(r, &form)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest)
			return
		}
		if errs == nil {
			s.addComment(w, r, post, form)
			return
		}
	}

	view, comments, err := s.postPage(ctx, post)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "post.html", &web.HTMLData{
		Title:    post.Title,
		Post:     view,
		Comments: comments,
		Form:     form,
		Errors:   errs,
	})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request, post *domain.Post, form forms.Comment) {
	ctx := r.Context()
	user := auth.CurrentUser(ctx)
	if user == nil {
		s.auth.Flash(ctx, flashLoginToComment)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	_, err := s.store.CreateComment(ctx, &domain.Comment{
		Text:     form.Text,
		AuthorID: user.ID,
		PostID:   post.ID,
	})
	if err != nil {
		s.fail(w, r, lookupError(err))
		return
	}
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (s *Server) newPost(w http.ResponseWriter, r *http.Request) {
	var form forms.Post
	data := &web.HTMLData{Title: "New Post", Form: form}
	if r.Method != http.MethodPost {
		s.render(w, r, "make-post.html", data)
		return
	}

	errs, err := forms.Decode(r, &form)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	data.Form, data.Errors = form, errs
	if errs != nil {
		s.render(w, r, "make-post.html", data)
		return
	}

	post, err := s.store.CreatePost(r.Context(), &domain.Post{
		AuthorID: auth.CurrentUser(r.Context()).ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
		Date:     s.today(),
	})
	if errors.Is(err, storage.ErrDuplicateTitle) {
		data.Errors = forms.Errors{"title": err.Error()}
		s.render(w, r, "make-post.html", data)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	log.Printf("Post created: ID=%d, Title=%q", post.ID, post.Title)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) editPost(w http.ResponseWriter, r *http.Request) {
	post := postFrom(r.Context())
	form := forms.Post{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
	data := &web.HTMLData{Title: "Edit Post", Form: form, IsEdit: true}
	if r.Method != http.MethodPost {
		s.render(w, r, "make-post.html", data)
		return
	}

	form = forms.Post{}
	errs, err := forms.Decode(r, &form)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest)
		return
	}
	data.Form, data.Errors = form, errs
	if errs != nil {
		s.render(w, r, "make-post.html", data)
		return
	}

	updated := *post
	updated.Title = form.Title
	updated.Subtitle = form.Subtitle
	updated.ImgURL = form.ImgURL
	updated.Body = form.Body
	updated.AuthorID = auth.CurrentUser(r.Context()).ID
	updated.Date = s.today()

	_, err = s.store.UpdatePost(r.Context(), &updated)
	if errors.Is(err, storage.ErrDuplicateTitle) {
		data.Errors = forms.Errors{"title": err.Error()}
		s.render(w, r, "make-post.html", data)
		return
	}
	if err != nil {
		s.fail(w, r, lookupError(err))
		return
	}
	log.Printf("Post updated: ID=%d, Title=%q", updated.ID, updated.Title)
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	post := postFrom(r.Context())
	if err := s.store.DeletePost(r.Context(), post.ID); err != nil {
		s.fail(w, r, lookupError(err))
		return
	}
	log.Printf("Post deleted: ID=%d", post.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) removeComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "commentID"))
	if err != nil {
		s.notFound(w, r)
		return
	}
	comment, err := s.store.GetCommentByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, lookupError(err))
		return
	}
	if err := s.store.DeleteComment(r.Context(), id); err != nil {
		s.fail(w, r, lookupError(err))
		return
	}
	http.Redirect(w, r, postURL(comment.PostID), http.StatusSeeOther)
}

func postURL(id int) string {
	return fmt.Sprintf("/post/%d", id)
}
