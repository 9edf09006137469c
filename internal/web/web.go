package web

import (
	"bytes"
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/forms"
)

//go:embed templates static
var files embed.FS

// SourceDir is where dev mode reads templates from, relative to the repo root.
const SourceDir = "internal/web"

// HTMLData is handed to every page template.
type HTMLData struct {
	Title       string
	Path        string
	CurrentUser *domain.User
	Flash       string

	Form   any
	Errors forms.Errors
	IsEdit bool

	Posts    []*PostView
	Post     *PostView
	Comments []*CommentView

	Status  int
	Message string
}

type PostView struct {
	*domain.Post
	Author   *domain.User
	BodyHTML template.HTML
}

type CommentView struct {
	*domain.Comment
	Author *domain.User
}

var functions = template.FuncMap{
	"gravatar": Gravatar,
	"authorName": func(u *domain.User) string {
		if u == nil {
			return "Unknown"
		}
		return u.Name
	},
}

// Gravatar returns the avatar URL for email (size 100, rating g, retro default).
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{"s": {"100"}, "r": {"g"}, "d": {"retro"}}
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?%s", hex.EncodeToString(sum[:]), q.Encode())
}

// Renderer executes page templates inside the shared layout.
type Renderer struct {
	dev   bool
	pages map[string]*template.Template
}

// NewRenderer parses every page once from the embedded files. In dev mode
// templates are re-read from SourceDir on each render instead.
func NewRenderer(dev bool) (*Renderer, error) {
	r := &Renderer{dev: dev, pages: make(map[string]*template.Template)}
	if dev {
		return r, nil
	}
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		page := filepath.Base(name)
		if page == "layout.html" {
			continue
		}
		t, err := template.New("layout.html").Funcs(functions).ParseFS(files, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *Renderer) parse(page string) (*template.Template, error) {
	if r.dev {
		dir := filepath.Join(SourceDir, "templates")
		return template.New("layout.html").Funcs(functions).
			ParseFiles(filepath.Join(dir, "layout.html"), filepath.Join(dir, page))
	}
	t, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", page)
	}
	return t, nil
}

// Render writes page to w. Nothing is written when execution fails.
func (r *Renderer) Render(w io.Writer, page string, data *HTMLData) error {
	t, err := r.parse(page)
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and images under /static/. Directory
// paths are 404s, not listings.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(filesOnly{sub})))
}

type filesOnly struct {
	fs.FS
}

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
