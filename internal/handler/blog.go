package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/render"
	"github.com/chefserge/chefsite-go/internal/store"
)

// postDateFormat is the display format stored with each post.
const postDateFormat = "January 2, 2006"

// BlogHandler handles the blog: listing, post detail, comments, and the
// admin post editor.
type BlogHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	// ugcPolicy sanitizes rich-text bodies submitted through the editor
	// and reader comments.
	ugcPolicy *bluemonday.Policy
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *BlogHandler {
	return &BlogHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		ugcPolicy:      bluemonday.UGCPolicy(),
	}
}

// homeData is the payload for the home page.
type homeData struct {
	Posts []store.BlogPost
}

// Home lists all posts. A storage failure degrades to an empty listing
// rather than an error page.
func (h *BlogHandler) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListBlogPosts(r.Context())
	if err != nil {
		slog.Error("listing posts for home page", "error", err)
		posts = nil
	}

	if err := h.renderer.Render(w, r, "index", render.TemplateData{
		Title:       "Home",
		CurrentUser: middleware.GetUser(r),
		Data:        homeData{Posts: posts},
	}); err != nil {
		logAndInternalError(w, "rendering home page", "error", err)
	}
}

// postData is the payload for the post detail page.
type postData struct {
	Post     store.BlogPost
	Comments []store.CommentWithAuthor
}

// PostDetail shows a single post with its comments.
func (h *BlogHandler) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.renderer.NotFound(w, r, middleware.GetUser(r))
		return
	}

	post, err := h.queries.GetBlogPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.renderer.NotFound(w, r, middleware.GetUser(r))
			return
		}
		logAndInternalError(w, "loading post", "error", err, "post_id", id)
		return
	}

	comments, err := h.queries.ListCommentsForPost(r.Context(), post.ID)
	if err != nil {
		slog.Error("listing comments", "error", err, "post_id", post.ID)
		comments = nil
	}

	if err := h.renderer.Render(w, r, "post", render.TemplateData{
		Title:       post.Title,
		CurrentUser: middleware.GetUser(r),
		Data:        postData{Post: post, Comments: comments},
	}); err != nil {
		logAndInternalError(w, "rendering post page", "error", err)
	}
}

// CreateComment stores a comment on a post. Anonymous visitors are sent
// to the login page and nothing is persisted.
func (h *BlogHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.renderer.NotFound(w, r, middleware.GetUser(r))
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		flashError(w, r, h.renderer, redirectLogin, "You need to login or register to comment.")
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteRoot) {
		return
	}

	text := strings.TrimSpace(r.FormValue("comment"))
	if text == "" {
		flashError(w, r, h.renderer, postURL(id), "Comment cannot be empty.")
		return
	}

	post, found := requireEntityWithRedirect(w, r, h.renderer, redirectHome, "post", id,
		func(id int64) (store.BlogPost, error) { return h.queries.GetBlogPostByID(r.Context(), id) })
	if !found {
		return
	}

	if _, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		Text:     h.ugcPolicy.Sanitize(text),
		AuthorID: user.ID,
		PostID:   post.ID,
	}); err != nil {
		logAndInternalError(w, "creating comment", "error", err, "post_id", post.ID)
		return
	}

	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// postFormData is the payload for the post editor form.
type postFormData struct {
	Post    store.BlogPost
	IsEdit  bool
	FormErr string
}

// NewPostForm renders the empty post editor.
func (h *BlogHandler) NewPostForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "make-post", render.TemplateData{
		Title:       "New Post",
		CurrentUser: middleware.GetUser(r),
		Data:        postFormData{},
	}); err != nil {
		logAndInternalError(w, "rendering post form", "error", err)
	}
}

// CreatePost stores a new post. A duplicate title re-renders the form
// with an inline error.
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !parseFormOrRedirect(w, r, h.renderer, RouteNewPost) {
		return
	}

	form, formErr := h.postFromForm(r)
	if formErr == "" {
		if _, err := h.queries.GetBlogPostByTitle(r.Context(), form.Title); err == nil {
			formErr = "A post with that title already exists."
		} else if !errors.Is(err, sql.ErrNoRows) {
			logAndInternalError(w, "checking post title", "error", err)
			return
		}
	}
	if formErr != "" {
		if err := h.renderer.Render(w, r, "make-post", render.TemplateData{
			Title:       "New Post",
			CurrentUser: user,
			Data:        postFormData{Post: form, FormErr: formErr},
		}); err != nil {
			logAndInternalError(w, "rendering post form", "error", err)
		}
		return
	}

	post, err := h.queries.CreateBlogPost(r.Context(), store.CreateBlogPostParams{
		AuthorID: user.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     time.Now().Format(postDateFormat),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if err != nil {
		logAndInternalError(w, "creating post", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, postURL(post.ID), "Post published.")
}

// EditPostForm renders the editor pre-filled with an existing post.
func (h *BlogHandler) EditPostForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.renderer.NotFound(w, r, middleware.GetUser(r))
		return
	}

	post, found := requireEntityWithRedirect(w, r, h.renderer, redirectHome, "post", id,
		func(id int64) (store.BlogPost, error) { return h.queries.GetBlogPostByID(r.Context(), id) })
	if !found {
		return
	}

	if err := h.renderer.Render(w, r, "make-post", render.TemplateData{
		Title:       "Edit Post",
		CurrentUser: middleware.GetUser(r),
		Data:        postFormData{Post: post, IsEdit: true},
	}); err != nil {
		logAndInternalError(w, "rendering post form", "error", err)
	}
}

// UpdatePost rewrites an existing post, keeping its original date.
func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.renderer.NotFound(w, r, middleware.GetUser(r))
		return
	}

	post, found := requireEntityWithRedirect(w, r, h.renderer, redirectHome, "post", id,
		func(id int64) (store.BlogPost, error) { return h.queries.GetBlogPostByID(r.Context(), id) })
	if !found {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, postURL(post.ID)) {
		return
	}

	form, formErr := h.postFromForm(r)
	if formErr != "" {
		form.ID = post.ID
		if err := h.renderer.Render(w, r, "make-post", render.TemplateData{
			Title:       "Edit Post",
			CurrentUser: middleware.GetUser(r),
			Data:        postFormData{Post: form, IsEdit: true, FormErr: formErr},
		}); err != nil {
			logAndInternalError(w, "rendering post form", "error", err)
		}
		return
	}

	if err := h.queries.UpdateBlogPost(r.Context(), store.UpdateBlogPostParams{
		ID:       post.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}); err != nil {
		logAndInternalError(w, "updating post", "error", err, "post_id", post.ID)
		return
	}

	flashSuccess(w, r, h.renderer, postURL(post.ID), "Post updated.")
}

// DeletePost removes a post. Its comments stay behind.
func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.renderer.NotFound(w, r, middleware.GetUser(r))
		return
	}

	if err := h.queries.DeleteBlogPost(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting post", "error", err, "post_id", id)
		return
	}

	flashSuccess(w, r, h.renderer, redirectHome, "Post deleted.")
}

// postFromForm reads and sanitizes the editor form. Returns the post
// fields and a validation message, empty when the form is valid.
func (h *BlogHandler) postFromForm(r *http.Request) (store.BlogPost, string) {
	post := store.BlogPost{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: strings.TrimSpace(r.FormValue("subtitle")),
		Body:     h.ugcPolicy.Sanitize(r.FormValue("body")),
		ImgURL:   strings.TrimSpace(r.FormValue("img_url")),
	}
	if post.Title == "" || post.Subtitle == "" || strings.TrimSpace(post.Body) == "" || post.ImgURL == "" {
		return post, "All fields are required."
	}
	return post, ""
}

func postURL(id int64) string {
	return "/post/" + formatID(id)
}
