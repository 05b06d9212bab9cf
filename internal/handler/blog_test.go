package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/chefserge/chefsite-go/internal/store"
)

func setupBlogHandler(t *testing.T) (*BlogHandler, *testDeps) {
	t.Helper()
	deps := newTestDeps(t)
	return NewBlogHandler(deps.db, deps.renderer, deps.sm), deps
}

func mustCreatePost(t *testing.T, deps *testDeps, authorID int64, title string) store.BlogPost {
	t.Helper()
	post, err := store.New(deps.db).CreateBlogPost(context.Background(), store.CreateBlogPostParams{
		AuthorID: authorID,
		Title:    title,
		Subtitle: "A subtitle",
		Date:     "January 1, 2020",
		Body:     "<p>Body text</p>",
		ImgURL:   "https://example.com/img.jpg",
	})
	if err != nil {
		t.Fatalf("creating post: %v", err)
	}
	return post
}

func TestHomeListsPosts(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{Email: "chef@example.com", Name: "Serge"})
	mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	h.Home(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Summer Tasting Notes") {
		t.Error("expected post title on home page")
	}
}

// A broken database must degrade to an empty listing, not an error page.
func TestHomeRendersWhenStorageFails(t *testing.T) {
	h, deps := setupBlogHandler(t)
	if _, err := deps.db.Exec("DROP TABLE blog_posts"); err != nil {
		t.Fatalf("dropping table: %v", err)
	}

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	h.Home(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
}

func TestPostDetailShowsComments(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{Email: "chef@example.com", Name: "Serge"})
	post := mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	if _, err := store.New(deps.db).CreateComment(context.Background(), store.CreateCommentParams{
		Text: "Looks delicious", AuthorID: author.ID, PostID: post.ID,
	}); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/post/1", nil))
	req = requestWithURLParams(req, map[string]string{"id": formatID(post.ID)})
	rec := httptest.NewRecorder()
	h.PostDetail(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "Looks delicious") || !strings.Contains(body, "Serge") {
		t.Error("expected comment with author name on post page")
	}
}

func TestPostDetailNotFound(t *testing.T) {
	h, deps := setupBlogHandler(t)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/post/99", nil))
	req = requestWithURLParams(req, map[string]string{"id": "99"})
	rec := httptest.NewRecorder()
	h.PostDetail(rec, req)

	assertStatus(t, rec.Code, http.StatusNotFound)
}

func TestCreateCommentRequiresLogin(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{Email: "chef@example.com", Name: "Serge"})
	post := mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	req := requestWithSession(deps.sm, postForm(t, "/post/1/comments", url.Values{
		"comment": {"drive-by comment"},
	}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(post.ID)})
	rec := httptest.NewRecorder()
	h.CreateComment(rec, req)

	assertRedirect(t, rec, "/login")

	count, err := store.New(deps.db).CountCommentsForPost(req.Context(), post.ID)
	if err != nil {
		t.Fatalf("counting comments: %v", err)
	}
	if count != 0 {
		t.Errorf("comment count = %d; want 0", count)
	}
}

func TestCreateCommentSanitizesAndStores(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{Email: "chef@example.com", Name: "Serge"})
	post := mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	req := requestWithSession(deps.sm, postForm(t, "/post/1/comments", url.Values{
		"comment": {`Nice <script>alert("x")</script> post`},
	}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(post.ID)})
	req = requestWithUser(req, author)
	rec := httptest.NewRecorder()
	h.CreateComment(rec, req)

	assertRedirect(t, rec, postURL(post.ID))

	comments, err := store.New(deps.db).ListCommentsForPost(req.Context(), post.ID)
	if err != nil {
		t.Fatalf("listing comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("comment count = %d; want 1", len(comments))
	}
	if strings.Contains(comments[0].Text, "<script>") {
		t.Errorf("comment text not sanitized: %q", comments[0].Text)
	}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{
		Email: "chef@example.com", Name: "Serge", Role: store.RoleAdmin,
	})
	mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	req := requestWithSession(deps.sm, postForm(t, "/new-post", url.Values{
		"title":    {"Summer Tasting Notes"},
		"subtitle": {"Again"},
		"body":     {"<p>Other body</p>"},
		"img_url":  {"https://example.com/other.jpg"},
	}))
	req = requestWithUser(req, author)
	rec := httptest.NewRecorder()
	h.CreatePost(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "A post with that title already exists.") {
		t.Error("expected duplicate title error on form")
	}

	posts, err := store.New(deps.db).ListBlogPosts(req.Context())
	if err != nil {
		t.Fatalf("listing posts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("post count = %d; want 1", len(posts))
	}
}

func TestUpdatePostKeepsDate(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{
		Email: "chef@example.com", Name: "Serge", Role: store.RoleAdmin,
	})
	post := mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	req := requestWithSession(deps.sm, postForm(t, "/edit-post/1", url.Values{
		"title":    {"Autumn Tasting Notes"},
		"subtitle": {"Revised"},
		"body":     {"<p>Updated body</p>"},
		"img_url":  {"https://example.com/img.jpg"},
	}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(post.ID)})
	req = requestWithUser(req, author)
	rec := httptest.NewRecorder()
	h.UpdatePost(rec, req)

	assertRedirect(t, rec, postURL(post.ID))

	updated, err := store.New(deps.db).GetBlogPostByID(req.Context(), post.ID)
	if err != nil {
		t.Fatalf("loading post: %v", err)
	}
	if updated.Title != "Autumn Tasting Notes" {
		t.Errorf("title = %q; want updated title", updated.Title)
	}
	if updated.Date != "January 1, 2020" {
		t.Errorf("date = %q; edits must not touch the publish date", updated.Date)
	}
}

func TestDeletePostLeavesComments(t *testing.T) {
	h, deps := setupBlogHandler(t)
	author := createTestUser(t, deps.db, testUser{
		Email: "chef@example.com", Name: "Serge", Role: store.RoleAdmin,
	})
	post := mustCreatePost(t, deps, author.ID, "Summer Tasting Notes")

	queries := store.New(deps.db)
	if _, err := queries.CreateComment(context.Background(), store.CreateCommentParams{
		Text: "Keep me", AuthorID: author.ID, PostID: post.ID,
	}); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	req := requestWithSession(deps.sm, postForm(t, "/delete/1", url.Values{}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(post.ID)})
	req = requestWithUser(req, author)
	rec := httptest.NewRecorder()
	h.DeletePost(rec, req)

	assertRedirect(t, rec, "/")

	count, err := queries.CountCommentsForPost(req.Context(), post.ID)
	if err != nil {
		t.Fatalf("counting comments: %v", err)
	}
	if count != 1 {
		t.Errorf("comment count = %d after post deletion; want 1", count)
	}
}
