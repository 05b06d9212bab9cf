package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/chefserge/chefsite-go/internal/service"
	"github.com/chefserge/chefsite-go/internal/store"
	"github.com/chefserge/chefsite-go/internal/util"
)

func setupCatalogHandler(t *testing.T) (*CatalogHandler, *testDeps) {
	t.Helper()
	deps := newTestDeps(t)
	uploads, err := service.NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("creating upload service: %v", err)
	}
	return NewCatalogHandler(deps.db, deps.renderer, uploads), deps
}

// postMultipart builds a multipart POST the way the menu and item forms
// submit, without a file attached.
func postMultipart(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing form field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func mustCreateMenu(t *testing.T, deps *testDeps, title, slug string, active bool) store.Menu {
	t.Helper()
	menu, err := store.New(deps.db).CreateMenu(context.Background(), store.CreateMenuParams{
		Title:    title,
		Slug:     util.NullString(slug),
		IsActive: active,
	})
	if err != nil {
		t.Fatalf("creating menu: %v", err)
	}
	return menu
}

func adminUser(t *testing.T, deps *testDeps) store.User {
	t.Helper()
	return createTestUser(t, deps.db, testUser{
		Email: "admin@example.com", Name: "Admin", Role: store.RoleAdmin,
	})
}

func TestCreateMenuAssignsUniqueSlugs(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)

	for i := 0; i < 2; i++ {
		req := requestWithSession(deps.sm, postMultipart(t, "/admin/menus/new", map[string]string{
			"title":     "Tasting Menu",
			"is_active": "1",
		}))
		req = requestWithUser(req, admin)
		rec := httptest.NewRecorder()
		h.CreateMenu(rec, req)
		assertRedirect(t, rec, redirectMenus)
	}

	menus, err := store.New(deps.db).ListMenus(context.Background())
	if err != nil {
		t.Fatalf("listing menus: %v", err)
	}
	if len(menus) != 2 {
		t.Fatalf("menu count = %d; want 2", len(menus))
	}
	slugs := []string{util.StringOrEmpty(menus[0].Slug), util.StringOrEmpty(menus[1].Slug)}
	if slugs[0] != "tasting-menu" || slugs[1] != "tasting-menu-1" {
		t.Errorf("slugs = %v; want [tasting-menu tasting-menu-1]", slugs)
	}
}

func TestUpdateMenuKeepsSlugOnCollision(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	mustCreateMenu(t, deps, "Brunch", "brunch", true)
	dinner := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	req := requestWithSession(deps.sm, postMultipart(t, "/admin/menus/2/edit", map[string]string{
		"title":     "Brunch",
		"is_active": "1",
	}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(dinner.ID)})
	req = requestWithUser(req, admin)
	rec := httptest.NewRecorder()
	h.UpdateMenu(rec, req)

	assertRedirect(t, rec, redirectMenus)

	updated, err := store.New(deps.db).GetMenuByID(context.Background(), dinner.ID)
	if err != nil {
		t.Fatalf("loading menu: %v", err)
	}
	if updated.Title != "Brunch" {
		t.Errorf("title = %q; want Brunch", updated.Title)
	}
	if got := util.StringOrEmpty(updated.Slug); got != "dinner" {
		t.Errorf("slug = %q; a taken slug must leave the old one in place", got)
	}
}

func TestMenuDetailBySlug(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	mustCreateMenu(t, deps, "Dinner", "dinner", true)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/menu/dinner", nil))
	req = requestWithURLParams(req, map[string]string{"slug": "dinner"})
	rec := httptest.NewRecorder()
	h.MenuDetail(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Dinner") {
		t.Error("expected menu title on detail page")
	}
}

// Pre-slug links used raw IDs; a numeric path segment that misses as a
// slug falls back to an ID lookup.
func TestMenuDetailNumericIDFallback(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	menu := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/menu/"+formatID(menu.ID), nil))
	req = requestWithURLParams(req, map[string]string{"slug": formatID(menu.ID)})
	rec := httptest.NewRecorder()
	h.MenuDetail(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
}

func TestMenuDetailUnknownSlug(t *testing.T) {
	h, deps := setupCatalogHandler(t)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/menu/nope", nil))
	req = requestWithURLParams(req, map[string]string{"slug": "nope"})
	rec := httptest.NewRecorder()
	h.MenuDetail(rec, req)

	assertStatus(t, rec.Code, http.StatusNotFound)
}

func TestMenuDetailDraftVisibility(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	mustCreateMenu(t, deps, "Secret Menu", "secret-menu", false)

	t.Run("hidden from the public", func(t *testing.T) {
		req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/menu/secret-menu", nil))
		req = requestWithURLParams(req, map[string]string{"slug": "secret-menu"})
		rec := httptest.NewRecorder()
		h.MenuDetail(rec, req)

		assertStatus(t, rec.Code, http.StatusNotFound)
	})

	t.Run("admin preview with noindex", func(t *testing.T) {
		req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/menu/secret-menu", nil))
		req = requestWithURLParams(req, map[string]string{"slug": "secret-menu"})
		req = requestWithUser(req, admin)
		rec := httptest.NewRecorder()
		h.MenuDetail(rec, req)

		assertStatus(t, rec.Code, http.StatusOK)
		body := rec.Body.String()
		if !strings.Contains(body, "noindex") {
			t.Error("expected noindex meta tag on draft preview")
		}
		if !strings.Contains(body, "draft-banner") {
			t.Error("expected draft banner on admin preview")
		}
	})
}

func TestPublicListingShowsOnlyActiveMenus(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	mustCreateMenu(t, deps, "Dinner", "dinner", true)
	mustCreateMenu(t, deps, "Secret Menu", "secret-menu", false)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/menus", nil))
	rec := httptest.NewRecorder()
	h.ListMenus(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "Dinner") {
		t.Error("expected active menu in listing")
	}
	if strings.Contains(body, "Secret Menu") {
		t.Error("draft menu must not appear in the public listing")
	}
}

func TestDeleteMenuRemovesSectionsAndItems(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	menu := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	queries := store.New(deps.db)
	section, err := queries.CreateMenuSection(context.Background(), store.CreateMenuSectionParams{
		MenuID: menu.ID, Title: "Starters", Position: 1,
	})
	if err != nil {
		t.Fatalf("creating section: %v", err)
	}
	if _, err := queries.CreateMenuItem(context.Background(), store.CreateMenuItemParams{
		SectionID: section.ID, Name: "Soup", Position: 1,
	}); err != nil {
		t.Fatalf("creating item: %v", err)
	}

	req := requestWithSession(deps.sm, postForm(t, "/admin/menus/1/delete", url.Values{}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(menu.ID)})
	req = requestWithUser(req, admin)
	rec := httptest.NewRecorder()
	h.DeleteMenu(rec, req)

	assertRedirect(t, rec, redirectMenus)

	var sections, items int
	if err := deps.db.QueryRow("SELECT COUNT(*) FROM menu_sections").Scan(&sections); err != nil {
		t.Fatalf("counting sections: %v", err)
	}
	if err := deps.db.QueryRow("SELECT COUNT(*) FROM menu_items").Scan(&items); err != nil {
		t.Fatalf("counting items: %v", err)
	}
	if sections != 0 || items != 0 {
		t.Errorf("sections = %d, items = %d after menu deletion; want 0, 0", sections, items)
	}
}

func TestToggleMenuFlipsActive(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	menu := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	req := requestWithSession(deps.sm, postForm(t, "/admin/menus/1/toggle", url.Values{}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(menu.ID)})
	req = requestWithUser(req, admin)
	rec := httptest.NewRecorder()
	h.ToggleMenu(rec, req)

	assertRedirect(t, rec, redirectMenus)

	updated, err := store.New(deps.db).GetMenuByID(context.Background(), menu.ID)
	if err != nil {
		t.Fatalf("loading menu: %v", err)
	}
	if updated.IsActive {
		t.Error("menu still active after toggle")
	}
}

// The section form pre-fills position to one past the current count; the
// submitted value is then stored verbatim.
func TestNewSectionFormDefaultPosition(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	menu := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	queries := store.New(deps.db)
	for _, title := range []string{"Starters", "Mains"} {
		if _, err := queries.CreateMenuSection(context.Background(), store.CreateMenuSectionParams{
			MenuID: menu.ID, Title: title, Position: 1,
		}); err != nil {
			t.Fatalf("creating section: %v", err)
		}
	}

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/admin/menus/1/sections/new", nil))
	req = requestWithURLParams(req, map[string]string{"id": formatID(menu.ID)})
	req = requestWithUser(req, admin)
	rec := httptest.NewRecorder()
	h.NewSectionForm(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `value="3"`) {
		t.Error("expected position defaulted to 3 with two existing sections")
	}
}

func TestCreateItemStoresSubmittedPosition(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	menu := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	queries := store.New(deps.db)
	section, err := queries.CreateMenuSection(context.Background(), store.CreateMenuSectionParams{
		MenuID: menu.ID, Title: "Starters", Position: 1,
	})
	if err != nil {
		t.Fatalf("creating section: %v", err)
	}

	req := requestWithSession(deps.sm, postMultipart(t, "/admin/sections/1/items/new", map[string]string{
		"name":     "Soup",
		"price":    "12",
		"position": "7",
	}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(section.ID)})
	req = requestWithUser(req, admin)
	rec := httptest.NewRecorder()
	h.CreateItem(rec, req)

	assertRedirect(t, rec, editMenuURL(menu.ID))

	items, err := queries.ListItemsForSection(context.Background(), section.ID)
	if err != nil {
		t.Fatalf("listing items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("item count = %d; want 1", len(items))
	}
	if items[0].Position != 7 {
		t.Errorf("position = %d; want the submitted value 7", items[0].Position)
	}
}

func TestDeleteSectionLeavesSiblings(t *testing.T) {
	h, deps := setupCatalogHandler(t)
	admin := adminUser(t, deps)
	menu := mustCreateMenu(t, deps, "Dinner", "dinner", true)

	queries := store.New(deps.db)
	starters, err := queries.CreateMenuSection(context.Background(), store.CreateMenuSectionParams{
		MenuID: menu.ID, Title: "Starters", Position: 1,
	})
	if err != nil {
		t.Fatalf("creating section: %v", err)
	}
	mains, err := queries.CreateMenuSection(context.Background(), store.CreateMenuSectionParams{
		MenuID: menu.ID, Title: "Mains", Position: 2,
	})
	if err != nil {
		t.Fatalf("creating section: %v", err)
	}
	if _, err := queries.CreateMenuItem(context.Background(), store.CreateMenuItemParams{
		SectionID: mains.ID, Name: "Steak", Position: 1,
	}); err != nil {
		t.Fatalf("creating item: %v", err)
	}

	req := requestWithSession(deps.sm, postForm(t, "/admin/sections/1/delete", url.Values{}))
	req = requestWithURLParams(req, map[string]string{"id": formatID(starters.ID)})
	req = requestWithUser(req, admin)
	rec := httptest.NewRecorder()
	h.DeleteSection(rec, req)

	assertRedirect(t, rec, editMenuURL(menu.ID))

	items, err := queries.ListItemsForSection(context.Background(), mains.ID)
	if err != nil {
		t.Fatalf("listing items: %v", err)
	}
	if len(items) != 1 {
		t.Error("sibling section's items must survive a section delete")
	}
}
