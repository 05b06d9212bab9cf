package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/render"
	"github.com/chefserge/chefsite-go/internal/service"
	"github.com/chefserge/chefsite-go/internal/store"
	"github.com/chefserge/chefsite-go/internal/util"
)

// CatalogHandler handles the public menu pages and the admin catalog
// CRUD for menus, sections, and items.
type CatalogHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	catalog  *service.CatalogService
	uploads  *service.UploadService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(db *sql.DB, renderer *render.Renderer, uploads *service.UploadService) *CatalogHandler {
	queries := store.New(db)
	return &CatalogHandler{
		queries:  queries,
		renderer: renderer,
		catalog:  service.NewCatalogService(queries),
		uploads:  uploads,
	}
}

// menusData is the payload for the public menu listing.
type menusData struct {
	Menus []store.Menu
}

// ListMenus shows the published menus.
func (h *CatalogHandler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.queries.ListActiveMenus(r.Context())
	if err != nil {
		logAndInternalError(w, "listing menus", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "menus", render.TemplateData{
		Title:       "Menus",
		CurrentUser: middleware.GetUser(r),
		Data:        menusData{Menus: menus},
	}); err != nil {
		logAndInternalError(w, "rendering menus page", "error", err)
	}
}

// sectionWithItems pairs a section with its items for display.
type sectionWithItems struct {
	Section store.MenuSection
	Items   []store.MenuItem
}

// menuDetailData is the payload for a menu detail page.
type menuDetailData struct {
	Menu     store.Menu
	Sections []sectionWithItems
	// IsDraft marks an unpublished menu previewed by the admin.
	IsDraft bool
}

// MenuDetail shows a single menu. Lookup is by slug; a miss on a purely
// numeric segment falls back to an ID lookup so pre-slug links keep
// working. Unpublished menus 404 for everyone but the admin, who sees a
// draft banner and a noindex meta tag.
func (h *CatalogHandler) MenuDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	user := middleware.GetUser(r)

	menu, err := h.queries.GetMenuBySlug(r.Context(), slug)
	if errors.Is(err, sql.ErrNoRows) && util.IsNumeric(slug) {
		if id, perr := strconv.ParseInt(slug, 10, 64); perr == nil {
			menu, err = h.queries.GetMenuByID(r.Context(), id)
		}
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.renderer.NotFound(w, r, user)
			return
		}
		logAndInternalError(w, "loading menu", "error", err, "slug", slug)
		return
	}

	isAdmin := user != nil && user.IsAdmin()
	if !menu.IsActive && !isAdmin {
		h.renderer.NotFound(w, r, user)
		return
	}

	sections, err := h.queries.ListSectionsForMenu(r.Context(), menu.ID)
	if err != nil {
		logAndInternalError(w, "listing sections", "error", err, "menu_id", menu.ID)
		return
	}

	detail := menuDetailData{Menu: menu, IsDraft: !menu.IsActive}
	for _, s := range sections {
		items, err := h.queries.ListItemsForSection(r.Context(), s.ID)
		if err != nil {
			logAndInternalError(w, "listing items", "error", err, "section_id", s.ID)
			return
		}
		detail.Sections = append(detail.Sections, sectionWithItems{Section: s, Items: items})
	}

	if err := h.renderer.Render(w, r, "menu_detail", render.TemplateData{
		Title:       menu.Title,
		CurrentUser: user,
		Data:        detail,
		NoIndex:     detail.IsDraft,
	}); err != nil {
		logAndInternalError(w, "rendering menu page", "error", err)
	}
}

// adminMenusData is the payload for the admin menu listing.
type adminMenusData struct {
	Menus []store.Menu
}

// AdminMenus lists every menu, drafts included.
func (h *CatalogHandler) AdminMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.queries.ListMenus(r.Context())
	if err != nil {
		logAndInternalError(w, "listing menus", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/menus", render.TemplateData{
		Title:       "Manage Menus",
		CurrentUser: middleware.GetUser(r),
		UnreadCount: h.unreadCount(r),
		Data:        adminMenusData{Menus: menus},
	}); err != nil {
		logAndInternalError(w, "rendering admin menus page", "error", err)
	}
}

// menuFormData is the payload for the menu editor form. Sections are
// loaded only on the edit page, which doubles as the hub for section
// and item management.
type menuFormData struct {
	Menu     store.Menu
	Sections []sectionWithItems
	IsEdit   bool
	FormErr  string
}

// NewMenuForm renders the empty menu editor.
func (h *CatalogHandler) NewMenuForm(w http.ResponseWriter, r *http.Request) {
	h.renderMenuForm(w, r, menuFormData{})
}

// CreateMenu stores a new menu with a collision-free slug.
func (h *CatalogHandler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	form, imgURL, formErr := h.menuFromForm(r)
	if formErr != "" {
		form.ID = 0
		h.renderMenuForm(w, r, menuFormData{Menu: form, FormErr: formErr})
		return
	}

	slug, err := h.catalog.UniqueSlug(r.Context(), form.Title)
	if err != nil {
		logAndInternalError(w, "assigning slug", "error", err)
		return
	}

	if _, err := h.queries.CreateMenu(r.Context(), store.CreateMenuParams{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   util.NullString(imgURL),
		Slug:     util.NullString(slug),
		IsActive: form.IsActive,
	}); err != nil {
		logAndInternalError(w, "creating menu", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, redirectMenus, "Menu created.")
}

// EditMenuForm renders the editor pre-filled with an existing menu and
// its sections and items.
func (h *CatalogHandler) EditMenuForm(w http.ResponseWriter, r *http.Request) {
	menu, found := h.requireMenu(w, r)
	if !found {
		return
	}

	sections, err := h.queries.ListSectionsForMenu(r.Context(), menu.ID)
	if err != nil {
		logAndInternalError(w, "listing sections", "error", err, "menu_id", menu.ID)
		return
	}
	data := menuFormData{Menu: menu, IsEdit: true}
	for _, s := range sections {
		items, err := h.queries.ListItemsForSection(r.Context(), s.ID)
		if err != nil {
			logAndInternalError(w, "listing items", "error", err, "section_id", s.ID)
			return
		}
		data.Sections = append(data.Sections, sectionWithItems{Section: s, Items: items})
	}

	h.renderMenuForm(w, r, data)
}

// UpdateMenu rewrites a menu. The slug follows the new title only when
// no other menu holds it; otherwise the stored slug stays.
func (h *CatalogHandler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	menu, found := h.requireMenu(w, r)
	if !found {
		return
	}

	form, imgURL, formErr := h.menuFromForm(r)
	if formErr != "" {
		form.ID = menu.ID
		h.renderMenuForm(w, r, menuFormData{Menu: form, IsEdit: true, FormErr: formErr})
		return
	}

	slug, err := h.catalog.SlugForEdit(r.Context(), menu, form.Title)
	if err != nil {
		logAndInternalError(w, "assigning slug", "error", err)
		return
	}

	// Without a new upload the menu keeps its current image.
	newImg := menu.ImgURL
	if imgURL != "" {
		newImg = util.NullString(imgURL)
	}

	if err := h.queries.UpdateMenu(r.Context(), store.UpdateMenuParams{
		ID:       menu.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   newImg,
		Slug:     util.NullString(slug),
		IsActive: form.IsActive,
	}); err != nil {
		logAndInternalError(w, "updating menu", "error", err, "menu_id", menu.ID)
		return
	}

	flashSuccess(w, r, h.renderer, redirectMenus, "Menu updated.")
}

// DeleteMenu removes a menu with its sections and items.
func (h *CatalogHandler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	menu, found := h.requireMenu(w, r)
	if !found {
		return
	}

	if err := h.queries.DeleteMenu(r.Context(), menu.ID); err != nil {
		logAndInternalError(w, "deleting menu", "error", err, "menu_id", menu.ID)
		return
	}

	flashSuccess(w, r, h.renderer, redirectMenus, "Menu deleted.")
}

// ToggleMenu flips a menu between published and draft.
func (h *CatalogHandler) ToggleMenu(w http.ResponseWriter, r *http.Request) {
	menu, found := h.requireMenu(w, r)
	if !found {
		return
	}

	if err := h.queries.SetMenuActive(r.Context(), menu.ID, !menu.IsActive); err != nil {
		logAndInternalError(w, "toggling menu", "error", err, "menu_id", menu.ID)
		return
	}

	state := "published"
	if menu.IsActive {
		state = "unpublished"
	}
	flashSuccess(w, r, h.renderer, redirectMenus, "Menu "+state+".")
}

// sectionFormData is the payload for the section editor form.
type sectionFormData struct {
	Menu    store.Menu
	Section store.MenuSection
	IsEdit  bool
	FormErr string
}

// NewSectionForm renders the section editor with position defaulted to
// one past the menu's current section count. The value is echoed back
// from the form on submit.
func (h *CatalogHandler) NewSectionForm(w http.ResponseWriter, r *http.Request) {
	menu, found := h.requireMenu(w, r)
	if !found {
		return
	}

	pos, err := h.catalog.NextSectionPosition(r.Context(), menu.ID)
	if err != nil {
		logAndInternalError(w, "counting sections", "error", err, "menu_id", menu.ID)
		return
	}

	h.renderSectionForm(w, r, sectionFormData{
		Menu:    menu,
		Section: store.MenuSection{MenuID: menu.ID, Position: pos},
	})
}

// CreateSection stores a new section under a menu.
func (h *CatalogHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	menu, found := h.requireMenu(w, r)
	if !found {
		return
	}

	section, formErr := h.sectionFromForm(r, menu.ID)
	if formErr != "" {
		h.renderSectionForm(w, r, sectionFormData{Menu: menu, Section: section, FormErr: formErr})
		return
	}

	if _, err := h.queries.CreateMenuSection(r.Context(), store.CreateMenuSectionParams{
		MenuID:   menu.ID,
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Position: section.Position,
	}); err != nil {
		logAndInternalError(w, "creating section", "error", err, "menu_id", menu.ID)
		return
	}

	flashSuccess(w, r, h.renderer, editMenuURL(menu.ID), "Section added.")
}

// EditSectionForm renders the editor pre-filled with an existing section.
func (h *CatalogHandler) EditSectionForm(w http.ResponseWriter, r *http.Request) {
	section, menu, found := h.requireSection(w, r)
	if !found {
		return
	}
	h.renderSectionForm(w, r, sectionFormData{Menu: menu, Section: section, IsEdit: true})
}

// UpdateSection rewrites a section.
func (h *CatalogHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	section, menu, found := h.requireSection(w, r)
	if !found {
		return
	}

	form, formErr := h.sectionFromForm(r, section.MenuID)
	form.ID = section.ID
	if formErr != "" {
		h.renderSectionForm(w, r, sectionFormData{Menu: menu, Section: form, IsEdit: true, FormErr: formErr})
		return
	}

	if err := h.queries.UpdateMenuSection(r.Context(), store.UpdateMenuSectionParams{
		ID:       section.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Position: form.Position,
	}); err != nil {
		logAndInternalError(w, "updating section", "error", err, "section_id", section.ID)
		return
	}

	flashSuccess(w, r, h.renderer, editMenuURL(section.MenuID), "Section updated.")
}

// DeleteSection removes a section and its items.
func (h *CatalogHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	section, _, found := h.requireSection(w, r)
	if !found {
		return
	}

	if err := h.queries.DeleteMenuSection(r.Context(), section.ID); err != nil {
		logAndInternalError(w, "deleting section", "error", err, "section_id", section.ID)
		return
	}

	flashSuccess(w, r, h.renderer, editMenuURL(section.MenuID), "Section deleted.")
}

// itemFormData is the payload for the item editor form.
type itemFormData struct {
	Section store.MenuSection
	Item    store.MenuItem
	IsEdit  bool
	FormErr string
}

// NewItemForm renders the item editor with position defaulted to one
// past the section's current item count.
func (h *CatalogHandler) NewItemForm(w http.ResponseWriter, r *http.Request) {
	section, _, found := h.requireSection(w, r)
	if !found {
		return
	}

	pos, err := h.catalog.NextItemPosition(r.Context(), section.ID)
	if err != nil {
		logAndInternalError(w, "counting items", "error", err, "section_id", section.ID)
		return
	}

	h.renderItemForm(w, r, itemFormData{
		Section: section,
		Item:    store.MenuItem{SectionID: section.ID, Position: pos},
	})
}

// CreateItem stores a new item under a section.
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	section, _, found := h.requireSection(w, r)
	if !found {
		return
	}

	item, imgURL, formErr := h.itemFromForm(r, section.ID)
	if formErr != "" {
		h.renderItemForm(w, r, itemFormData{Section: section, Item: item, FormErr: formErr})
		return
	}

	if _, err := h.queries.CreateMenuItem(r.Context(), store.CreateMenuItemParams{
		SectionID:   section.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		ImgURL:      util.NullString(imgURL),
		Position:    item.Position,
	}); err != nil {
		logAndInternalError(w, "creating item", "error", err, "section_id", section.ID)
		return
	}

	flashSuccess(w, r, h.renderer, editMenuURL(section.MenuID), "Item added.")
}

// EditItemForm renders the editor pre-filled with an existing item.
func (h *CatalogHandler) EditItemForm(w http.ResponseWriter, r *http.Request) {
	item, section, found := h.requireItem(w, r)
	if !found {
		return
	}
	h.renderItemForm(w, r, itemFormData{Section: section, Item: item, IsEdit: true})
}

// UpdateItem rewrites an item.
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	item, section, found := h.requireItem(w, r)
	if !found {
		return
	}

	form, imgURL, formErr := h.itemFromForm(r, item.SectionID)
	form.ID = item.ID
	if formErr != "" {
		h.renderItemForm(w, r, itemFormData{Section: section, Item: form, IsEdit: true, FormErr: formErr})
		return
	}

	newImg := item.ImgURL
	if imgURL != "" {
		newImg = util.NullString(imgURL)
	}

	if err := h.queries.UpdateMenuItem(r.Context(), store.UpdateMenuItemParams{
		ID:          item.ID,
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		ImgURL:      newImg,
		Position:    form.Position,
	}); err != nil {
		logAndInternalError(w, "updating item", "error", err, "item_id", item.ID)
		return
	}

	flashSuccess(w, r, h.renderer, editMenuURL(section.MenuID), "Item updated.")
}

// DeleteItem removes a single item.
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	item, section, found := h.requireItem(w, r)
	if !found {
		return
	}

	if err := h.queries.DeleteMenuItem(r.Context(), item.ID); err != nil {
		logAndInternalError(w, "deleting item", "error", err, "item_id", item.ID)
		return
	}

	flashSuccess(w, r, h.renderer, editMenuURL(section.MenuID), "Item deleted.")
}

// ----- form parsing and lookup helpers -----

func (h *CatalogHandler) requireMenu(w http.ResponseWriter, r *http.Request) (store.Menu, bool) {
	id, ok := idParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectMenus, "menu not found")
		return store.Menu{}, false
	}
	return requireEntityWithRedirect(w, r, h.renderer, redirectMenus, "menu", id,
		func(id int64) (store.Menu, error) { return h.queries.GetMenuByID(r.Context(), id) })
}

func (h *CatalogHandler) requireSection(w http.ResponseWriter, r *http.Request) (store.MenuSection, store.Menu, bool) {
	id, ok := idParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectMenus, "section not found")
		return store.MenuSection{}, store.Menu{}, false
	}
	section, found := requireEntityWithRedirect(w, r, h.renderer, redirectMenus, "section", id,
		func(id int64) (store.MenuSection, error) { return h.queries.GetMenuSection(r.Context(), id) })
	if !found {
		return store.MenuSection{}, store.Menu{}, false
	}
	menu, found := requireEntityWithRedirect(w, r, h.renderer, redirectMenus, "menu", section.MenuID,
		func(id int64) (store.Menu, error) { return h.queries.GetMenuByID(r.Context(), id) })
	if !found {
		return store.MenuSection{}, store.Menu{}, false
	}
	return section, menu, true
}

func (h *CatalogHandler) requireItem(w http.ResponseWriter, r *http.Request) (store.MenuItem, store.MenuSection, bool) {
	id, ok := idParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectMenus, "item not found")
		return store.MenuItem{}, store.MenuSection{}, false
	}
	item, found := requireEntityWithRedirect(w, r, h.renderer, redirectMenus, "item", id,
		func(id int64) (store.MenuItem, error) { return h.queries.GetMenuItem(r.Context(), id) })
	if !found {
		return store.MenuItem{}, store.MenuSection{}, false
	}
	section, found := requireEntityWithRedirect(w, r, h.renderer, redirectMenus, "section", item.SectionID,
		func(id int64) (store.MenuSection, error) { return h.queries.GetMenuSection(r.Context(), id) })
	if !found {
		return store.MenuItem{}, store.MenuSection{}, false
	}
	return item, section, true
}

// menuFromForm parses the multipart menu form, storing an uploaded image
// when present. Returns the menu fields, the stored image URL (empty when
// no new upload), and a validation message.
func (h *CatalogHandler) menuFromForm(r *http.Request) (store.Menu, string, string) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		return store.Menu{}, "", "Invalid form data"
	}

	menu := store.Menu{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: util.NullString(strings.TrimSpace(r.FormValue("subtitle"))),
		IsActive: r.FormValue("is_active") != "",
	}
	if menu.Title == "" {
		return menu, "", "Title is required."
	}

	imgURL, err := h.saveUploadedImage(r)
	if err != nil {
		return menu, "", err.Error()
	}
	return menu, imgURL, ""
}

func (h *CatalogHandler) sectionFromForm(r *http.Request, menuID int64) (store.MenuSection, string) {
	if err := r.ParseForm(); err != nil {
		return store.MenuSection{MenuID: menuID}, "Invalid form data"
	}

	section := store.MenuSection{
		MenuID:   menuID,
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: util.NullString(strings.TrimSpace(r.FormValue("subtitle"))),
	}
	// Position is persisted as submitted; the form pre-fills the default.
	pos, err := strconv.ParseInt(r.FormValue("position"), 10, 64)
	if err != nil || pos < 0 {
		return section, "Position must be a non-negative number."
	}
	section.Position = pos

	if section.Title == "" {
		return section, "Title is required."
	}
	return section, ""
}

func (h *CatalogHandler) itemFromForm(r *http.Request, sectionID int64) (store.MenuItem, string, string) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		return store.MenuItem{SectionID: sectionID}, "", "Invalid form data"
	}

	item := store.MenuItem{
		SectionID:   sectionID,
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: util.NullString(strings.TrimSpace(r.FormValue("description"))),
		Price:       util.NullString(strings.TrimSpace(r.FormValue("price"))),
	}
	pos, err := strconv.ParseInt(r.FormValue("position"), 10, 64)
	if err != nil || pos < 0 {
		return item, "", "Position must be a non-negative number."
	}
	item.Position = pos

	if item.Name == "" {
		return item, "", "Name is required."
	}

	imgURL, err := h.saveUploadedImage(r)
	if err != nil {
		return item, "", err.Error()
	}
	return item, imgURL, ""
}

// saveUploadedImage stores the optional "img" form file. Returns the
// public URL, empty when the field was left blank.
func (h *CatalogHandler) saveUploadedImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("img")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errors.New("Invalid image upload")
	}
	defer file.Close()

	result, err := h.uploads.Save(file, header)
	if err != nil {
		slog.Error("saving upload", "error", err)
		return "", errors.New("Could not save the uploaded image.")
	}
	return result.URL, nil
}

func (h *CatalogHandler) renderMenuForm(w http.ResponseWriter, r *http.Request, data menuFormData) {
	title := "New Menu"
	if data.IsEdit {
		title = "Edit Menu"
	}
	if err := h.renderer.Render(w, r, "admin/edit_menu", render.TemplateData{
		Title:       title,
		CurrentUser: middleware.GetUser(r),
		UnreadCount: h.unreadCount(r),
		Data:        data,
	}); err != nil {
		logAndInternalError(w, "rendering menu form", "error", err)
	}
}

func (h *CatalogHandler) renderSectionForm(w http.ResponseWriter, r *http.Request, data sectionFormData) {
	title := "New Section"
	if data.IsEdit {
		title = "Edit Section"
	}
	if err := h.renderer.Render(w, r, "admin/edit_section", render.TemplateData{
		Title:       title,
		CurrentUser: middleware.GetUser(r),
		UnreadCount: h.unreadCount(r),
		Data:        data,
	}); err != nil {
		logAndInternalError(w, "rendering section form", "error", err)
	}
}

func (h *CatalogHandler) renderItemForm(w http.ResponseWriter, r *http.Request, data itemFormData) {
	title := "New Item"
	if data.IsEdit {
		title = "Edit Item"
	}
	if err := h.renderer.Render(w, r, "admin/edit_item", render.TemplateData{
		Title:       title,
		CurrentUser: middleware.GetUser(r),
		UnreadCount: h.unreadCount(r),
		Data:        data,
	}); err != nil {
		logAndInternalError(w, "rendering item form", "error", err)
	}
}

// unreadCount supplies the unread-inquiry badge for admin layouts.
// Failures degrade to zero.
func (h *CatalogHandler) unreadCount(r *http.Request) int64 {
	n, err := h.queries.CountUnreadContactMessages(r.Context())
	if err != nil {
		slog.Error("counting unread messages", "error", err)
		return 0
	}
	return n
}

func editMenuURL(menuID int64) string {
	return "/admin/menus/" + formatID(menuID) + "/edit"
}
