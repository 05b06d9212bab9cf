// Package service holds business logic shared by handlers: slug
// assignment, the outbound mailer, and image uploads.
package service

import (
	"context"
	"fmt"

	"github.com/chefserge/chefsite-go/internal/store"
	"github.com/chefserge/chefsite-go/internal/util"
)

// CatalogService wraps catalog rules that span more than one query:
// slug assignment and default ordering for new sections and items.
type CatalogService struct {
	queries *store.Queries
}

// NewCatalogService creates a catalog service over the query layer.
func NewCatalogService(queries *store.Queries) *CatalogService {
	return &CatalogService{queries: queries}
}

// UniqueSlug slugifies title and, when the slug is already taken,
// appends the first free numeric suffix: base-1, base-2, and so on.
// Used when creating a menu; edits keep their stored slug on collision.
func (s *CatalogService) UniqueSlug(ctx context.Context, title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "menu"
	}

	slug := base
	for n := 1; ; n++ {
		taken, err := s.queries.MenuSlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// SlugForEdit returns the slug an edited menu should carry: the new
// title's slug when free or already owned by this menu, otherwise the
// menu's current slug.
func (s *CatalogService) SlugForEdit(ctx context.Context, menu store.Menu, title string) (string, error) {
	candidate := util.Slugify(title)
	if candidate == "" {
		candidate = "menu"
	}
	if menu.Slug.Valid && menu.Slug.String == candidate {
		return candidate, nil
	}

	taken, err := s.queries.MenuSlugExists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("checking slug %q: %w", candidate, err)
	}
	if taken {
		// Collision on edit keeps the old slug so existing links hold.
		return util.StringOrEmpty(menu.Slug), nil
	}
	return candidate, nil
}

// NextSectionPosition suggests the position for a new section: one past
// the current section count.
func (s *CatalogService) NextSectionPosition(ctx context.Context, menuID int64) (int64, error) {
	n, err := s.queries.CountSectionsForMenu(ctx, menuID)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// NextItemPosition suggests the position for a new item: one past the
// current item count in the section.
func (s *CatalogService) NextItemPosition(ctx context.Context, sectionID int64) (int64, error) {
	n, err := s.queries.CountItemsForSection(ctx, sectionID)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
