package handler

import (
	"net/http"

	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/render"
)

// PagesHandler serves the static marketing pages.
type PagesHandler struct {
	renderer *render.Renderer
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(renderer *render.Renderer) *PagesHandler {
	return &PagesHandler{renderer: renderer}
}

// About renders the about page.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "about", render.TemplateData{
		Title:       "About",
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering about page", "error", err)
	}
}

// Services renders the services page.
func (h *PagesHandler) Services(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "services", render.TemplateData{
		Title:       "Services",
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering services page", "error", err)
	}
}
