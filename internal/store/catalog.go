package store

import (
	"context"
	"database/sql"
)

const listMenus = `
SELECT id, title, subtitle, img_url, slug, is_active
FROM menus ORDER BY id
`

// ListMenus returns every menu, drafts included, in creation order.
func (q *Queries) ListMenus(ctx context.Context) ([]Menu, error) {
	return q.scanMenus(ctx, listMenus)
}

const listActiveMenus = `
SELECT id, title, subtitle, img_url, slug, is_active
FROM menus WHERE is_active = ? ORDER BY id
`

// ListActiveMenus returns only published menus, in creation order.
func (q *Queries) ListActiveMenus(ctx context.Context) ([]Menu, error) {
	return q.scanMenus(ctx, rebind(listActiveMenus), true)
}

func (q *Queries) scanMenus(ctx context.Context, query string, args ...any) ([]Menu, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var menus []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Title, &m.Subtitle, &m.ImgURL, &m.Slug, &m.IsActive); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

const getMenuByID = `
SELECT id, title, subtitle, img_url, slug, is_active
FROM menus WHERE id = ?
`

// GetMenuByID fetches a single menu.
func (q *Queries) GetMenuByID(ctx context.Context, id int64) (Menu, error) {
	row := q.db.QueryRowContext(ctx, rebind(getMenuByID), id)
	var m Menu
	err := row.Scan(&m.ID, &m.Title, &m.Subtitle, &m.ImgURL, &m.Slug, &m.IsActive)
	return m, err
}

const getMenuBySlug = `
SELECT id, title, subtitle, img_url, slug, is_active
FROM menus WHERE slug = ?
`

// GetMenuBySlug fetches a menu by its unique URL slug.
func (q *Queries) GetMenuBySlug(ctx context.Context, slug string) (Menu, error) {
	row := q.db.QueryRowContext(ctx, rebind(getMenuBySlug), slug)
	var m Menu
	err := row.Scan(&m.ID, &m.Title, &m.Subtitle, &m.ImgURL, &m.Slug, &m.IsActive)
	return m, err
}

const menuSlugExists = `SELECT EXISTS(SELECT 1 FROM menus WHERE slug = ?)`

// MenuSlugExists reports whether any menu already holds the slug.
func (q *Queries) MenuSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, rebind(menuSlugExists), slug).Scan(&exists)
	return exists, err
}

const createMenu = `
INSERT INTO menus (title, subtitle, img_url, slug, is_active)
VALUES (?, ?, ?, ?, ?)
RETURNING id, title, subtitle, img_url, slug, is_active
`

// CreateMenuParams holds the fields for a new menu.
type CreateMenuParams struct {
	Title    string
	Subtitle sql.NullString
	ImgURL   sql.NullString
	Slug     sql.NullString
	IsActive bool
}

// CreateMenu inserts a menu and returns the stored record.
func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	row := q.db.QueryRowContext(ctx, rebind(createMenu),
		arg.Title, arg.Subtitle, arg.ImgURL, arg.Slug, arg.IsActive)
	var m Menu
	err := row.Scan(&m.ID, &m.Title, &m.Subtitle, &m.ImgURL, &m.Slug, &m.IsActive)
	return m, err
}

const updateMenu = `
UPDATE menus
SET title = ?, subtitle = ?, img_url = ?, slug = ?, is_active = ?
WHERE id = ?
`

// UpdateMenuParams holds a menu's editable fields.
type UpdateMenuParams struct {
	ID       int64
	Title    string
	Subtitle sql.NullString
	ImgURL   sql.NullString
	Slug     sql.NullString
	IsActive bool
}

// UpdateMenu rewrites a menu's fields, slug included.
func (q *Queries) UpdateMenu(ctx context.Context, arg UpdateMenuParams) error {
	_, err := q.db.ExecContext(ctx, rebind(updateMenu),
		arg.Title, arg.Subtitle, arg.ImgURL, arg.Slug, arg.IsActive, arg.ID)
	return err
}

const setMenuActive = `UPDATE menus SET is_active = ? WHERE id = ?`

// SetMenuActive publishes or unpublishes a menu.
func (q *Queries) SetMenuActive(ctx context.Context, id int64, active bool) error {
	_, err := q.db.ExecContext(ctx, rebind(setMenuActive), active, id)
	return err
}

const deleteMenuItemsForMenu = `
DELETE FROM menu_items
WHERE section_id IN (SELECT id FROM menu_sections WHERE menu_id = ?)
`

const deleteSectionsForMenu = `DELETE FROM menu_sections WHERE menu_id = ?`

const deleteMenu = `DELETE FROM menus WHERE id = ?`

// DeleteMenu removes a menu along with all of its sections and items. The
// children are deleted explicitly rather than relying on the schema's
// cascade, so removal behaves identically on both backends.
func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, rebind(deleteMenuItemsForMenu), id); err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, rebind(deleteSectionsForMenu), id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, rebind(deleteMenu), id)
	return err
}

const listSectionsForMenu = `
SELECT id, menu_id, title, subtitle, position
FROM menu_sections WHERE menu_id = ?
ORDER BY position, id
`

// ListSectionsForMenu returns a menu's sections in display order.
func (q *Queries) ListSectionsForMenu(ctx context.Context, menuID int64) ([]MenuSection, error) {
	rows, err := q.db.QueryContext(ctx, rebind(listSectionsForMenu), menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sections []MenuSection
	for rows.Next() {
		var s MenuSection
		if err := rows.Scan(&s.ID, &s.MenuID, &s.Title, &s.Subtitle, &s.Position); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

const getMenuSection = `
SELECT id, menu_id, title, subtitle, position
FROM menu_sections WHERE id = ?
`

// GetMenuSection fetches a single section.
func (q *Queries) GetMenuSection(ctx context.Context, id int64) (MenuSection, error) {
	row := q.db.QueryRowContext(ctx, rebind(getMenuSection), id)
	var s MenuSection
	err := row.Scan(&s.ID, &s.MenuID, &s.Title, &s.Subtitle, &s.Position)
	return s, err
}

const createMenuSection = `
INSERT INTO menu_sections (menu_id, title, subtitle, position)
VALUES (?, ?, ?, ?)
RETURNING id, menu_id, title, subtitle, position
`

// CreateMenuSectionParams holds the fields for a new section.
type CreateMenuSectionParams struct {
	MenuID   int64
	Title    string
	Subtitle sql.NullString
	Position int64
}

// CreateMenuSection inserts a section and returns the stored record.
func (q *Queries) CreateMenuSection(ctx context.Context, arg CreateMenuSectionParams) (MenuSection, error) {
	row := q.db.QueryRowContext(ctx, rebind(createMenuSection),
		arg.MenuID, arg.Title, arg.Subtitle, arg.Position)
	var s MenuSection
	err := row.Scan(&s.ID, &s.MenuID, &s.Title, &s.Subtitle, &s.Position)
	return s, err
}

const updateMenuSection = `
UPDATE menu_sections SET title = ?, subtitle = ?, position = ? WHERE id = ?
`

// UpdateMenuSectionParams holds a section's editable fields.
type UpdateMenuSectionParams struct {
	ID       int64
	Title    string
	Subtitle sql.NullString
	Position int64
}

// UpdateMenuSection rewrites a section's fields.
func (q *Queries) UpdateMenuSection(ctx context.Context, arg UpdateMenuSectionParams) error {
	_, err := q.db.ExecContext(ctx, rebind(updateMenuSection),
		arg.Title, arg.Subtitle, arg.Position, arg.ID)
	return err
}

const deleteItemsForSection = `DELETE FROM menu_items WHERE section_id = ?`

const deleteMenuSection = `DELETE FROM menu_sections WHERE id = ?`

// DeleteMenuSection removes a section and its items.
func (q *Queries) DeleteMenuSection(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, rebind(deleteItemsForSection), id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, rebind(deleteMenuSection), id)
	return err
}

const countSectionsForMenu = `SELECT COUNT(*) FROM menu_sections WHERE menu_id = ?`

// CountSectionsForMenu returns how many sections a menu has.
func (q *Queries) CountSectionsForMenu(ctx context.Context, menuID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, rebind(countSectionsForMenu), menuID).Scan(&n)
	return n, err
}

const listItemsForSection = `
SELECT id, section_id, name, description, price, img_url, position
FROM menu_items WHERE section_id = ?
ORDER BY position, id
`

// ListItemsForSection returns a section's items in display order.
func (q *Queries) ListItemsForSection(ctx context.Context, sectionID int64) ([]MenuItem, error) {
	rows, err := q.db.QueryContext(ctx, rebind(listItemsForSection), sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var it MenuItem
		if err := rows.Scan(&it.ID, &it.SectionID, &it.Name, &it.Description, &it.Price, &it.ImgURL, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const getMenuItem = `
SELECT id, section_id, name, description, price, img_url, position
FROM menu_items WHERE id = ?
`

// GetMenuItem fetches a single item.
func (q *Queries) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, rebind(getMenuItem), id)
	var it MenuItem
	err := row.Scan(&it.ID, &it.SectionID, &it.Name, &it.Description, &it.Price, &it.ImgURL, &it.Position)
	return it, err
}

const createMenuItem = `
INSERT INTO menu_items (section_id, name, description, price, img_url, position)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, section_id, name, description, price, img_url, position
`

// CreateMenuItemParams holds the fields for a new item.
type CreateMenuItemParams struct {
	SectionID   int64
	Name        string
	Description sql.NullString
	Price       sql.NullString
	ImgURL      sql.NullString
	Position    int64
}

// CreateMenuItem inserts an item and returns the stored record.
func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRowContext(ctx, rebind(createMenuItem),
		arg.SectionID, arg.Name, arg.Description, arg.Price, arg.ImgURL, arg.Position)
	var it MenuItem
	err := row.Scan(&it.ID, &it.SectionID, &it.Name, &it.Description, &it.Price, &it.ImgURL, &it.Position)
	return it, err
}

const updateMenuItem = `
UPDATE menu_items
SET name = ?, description = ?, price = ?, img_url = ?, position = ?
WHERE id = ?
`

// UpdateMenuItemParams holds an item's editable fields.
type UpdateMenuItemParams struct {
	ID          int64
	Name        string
	Description sql.NullString
	Price       sql.NullString
	ImgURL      sql.NullString
	Position    int64
}

// UpdateMenuItem rewrites an item's fields.
func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) error {
	_, err := q.db.ExecContext(ctx, rebind(updateMenuItem),
		arg.Name, arg.Description, arg.Price, arg.ImgURL, arg.Position, arg.ID)
	return err
}

const deleteMenuItem = `DELETE FROM menu_items WHERE id = ?`

// DeleteMenuItem removes a single item.
func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, rebind(deleteMenuItem), id)
	return err
}

const countItemsForSection = `SELECT COUNT(*) FROM menu_items WHERE section_id = ?`

// CountItemsForSection returns how many items a section has.
func (q *Queries) CountItemsForSection(ctx context.Context, sectionID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, rebind(countItemsForSection), sectionID).Scan(&n)
	return n, err
}
