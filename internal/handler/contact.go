package handler

import (
	"database/sql"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/chefserge/chefsite-go/internal/config"
	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/render"
	"github.com/chefserge/chefsite-go/internal/service"
	"github.com/chefserge/chefsite-go/internal/store"
	"github.com/chefserge/chefsite-go/internal/util"
)

// dateSentFormat is the display format stored with each inquiry.
const dateSentFormat = "2006-01-02 15:04:05"

// ContactHandler handles the public inquiry form and the admin message
// console.
type ContactHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	mailer   *service.Mailer
	cfg      *config.Config
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(db *sql.DB, renderer *render.Renderer, mailer *service.Mailer, cfg *config.Config) *ContactHandler {
	return &ContactHandler{
		queries:  store.New(db),
		renderer: renderer,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// contactFormData is the payload for the contact form page.
type contactFormData struct {
	Menus   []store.Menu
	Form    contactForm
	Errors  map[string]string
	Sent    bool
	MailErr bool
}

// contactForm carries the submitted fields for re-rendering.
type contactForm struct {
	Name            string
	Email           string
	Phone           string
	EventDate       string
	NumberOfPeople  string
	Occasion        string
	Allergies       string
	MenusInterested []string
	Message         string
}

// ContactForm renders the inquiry form with the published menus offered
// as checkboxes.
func (h *ContactHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	menus, err := h.queries.ListActiveMenus(r.Context())
	if err != nil {
		slog.Error("listing menus for contact form", "error", err)
		menus = nil
	}

	if err := h.renderer.Render(w, r, "contact", render.TemplateData{
		Title:       "Contact",
		CurrentUser: middleware.GetUser(r),
		Data:        contactFormData{Menus: menus},
	}); err != nil {
		logAndInternalError(w, "rendering contact page", "error", err)
	}
}

// SubmitContact validates and stores an inquiry, then makes one
// best-effort delivery attempt. The row is persisted before any email
// work; a failed send only annotates the response.
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectContact, "Invalid form data")
		return
	}

	form := contactForm{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Phone:           strings.TrimSpace(r.FormValue("phone")),
		EventDate:       strings.TrimSpace(r.FormValue("event_date")),
		NumberOfPeople:  strings.TrimSpace(r.FormValue("number_of_people")),
		Occasion:        strings.TrimSpace(r.FormValue("occasion")),
		Allergies:       strings.TrimSpace(r.FormValue("allergies")),
		MenusInterested: r.Form["menus_interested"],
		Message:         strings.TrimSpace(r.FormValue("message")),
	}

	formErrors := make(map[string]string)
	if form.Name == "" {
		formErrors["name"] = "Name is required."
	}
	if form.Email == "" {
		formErrors["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(form.Email); err != nil {
		formErrors["email"] = "Please enter a valid email address."
	}
	if form.Message == "" {
		formErrors["message"] = "Message is required."
	}

	if len(formErrors) > 0 {
		menus, err := h.queries.ListActiveMenus(r.Context())
		if err != nil {
			slog.Error("listing menus for contact form", "error", err)
		}
		if err := h.renderer.Render(w, r, "contact", render.TemplateData{
			Title:       "Contact",
			CurrentUser: middleware.GetUser(r),
			Data:        contactFormData{Menus: menus, Form: form, Errors: formErrors},
		}); err != nil {
			logAndInternalError(w, "rendering contact page", "error", err)
		}
		return
	}

	msg, err := h.queries.CreateContactMessage(r.Context(), store.CreateContactMessageParams{
		Name:            form.Name,
		Email:           form.Email,
		Phone:           util.NullString(form.Phone),
		EventDate:       util.NullString(form.EventDate),
		NumberOfPeople:  util.NullString(form.NumberOfPeople),
		Occasion:        util.NullString(form.Occasion),
		Allergies:       util.NullString(form.Allergies),
		MenusInterested: util.NullString(strings.Join(form.MenusInterested, ", ")),
		Message:         form.Message,
		DateSent:        time.Now().Format(dateSentFormat),
	})
	if err != nil {
		logAndInternalError(w, "storing contact message", "error", err)
		return
	}

	// Delivery is best-effort: the stored row is the source of truth.
	mailErr := h.relayInquiry(r, msg)
	if mailErr != nil {
		slog.Error("relaying inquiry email", "error", mailErr, "message_id", msg.ID)
	}

	if err := h.renderer.Render(w, r, "contact", render.TemplateData{
		Title:       "Contact",
		CurrentUser: middleware.GetUser(r),
		Data:        contactFormData{Sent: true, MailErr: mailErr != nil},
	}); err != nil {
		logAndInternalError(w, "rendering contact page", "error", err)
	}
}

// relayInquiry sends the inquiry to the configured inbox with reply-to
// pointing back at the submitter.
func (h *ContactHandler) relayInquiry(r *http.Request, msg store.ContactMessage) error {
	if h.cfg.ContactToEmail == "" {
		return fmt.Errorf("no CONTACT_TO_EMAIL configured")
	}

	email := service.Email{
		To:      []string{h.cfg.ContactToEmail},
		ReplyTo: msg.Email,
		Subject: "New inquiry from " + msg.Name,
		Text:    inquiryText(msg),
		HTML:    inquiryHTML(msg),
	}
	if h.cfg.ContactCCEmail != "" {
		email.Cc = []string{h.cfg.ContactCCEmail}
	}

	return h.mailer.Send(r.Context(), email)
}

// inquiryText renders the plain-text email body.
func inquiryText(msg store.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	writeOptional := func(label string, v sql.NullString) {
		if v.Valid && v.String != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, v.String)
		}
	}
	writeOptional("Phone", msg.Phone)
	writeOptional("Event date", msg.EventDate)
	writeOptional("Number of people", msg.NumberOfPeople)
	writeOptional("Occasion", msg.Occasion)
	writeOptional("Allergies", msg.Allergies)
	writeOptional("Menus interested", msg.MenusInterested)
	fmt.Fprintf(&b, "\n%s\n", msg.Message)
	fmt.Fprintf(&b, "\nSent %s\n", msg.DateSent)
	return b.String()
}

// inquiryHTML renders the HTML email body.
func inquiryHTML(msg store.ContactMessage) string {
	var b strings.Builder
	b.WriteString("<h2>New inquiry</h2><table>")
	row := func(label, v string) {
		if v != "" {
			fmt.Fprintf(&b, "<tr><th align=\"left\">%s</th><td>%s</td></tr>",
				html.EscapeString(label), html.EscapeString(v))
		}
	}
	row("Name", msg.Name)
	row("Email", msg.Email)
	row("Phone", util.StringOrEmpty(msg.Phone))
	row("Event date", util.StringOrEmpty(msg.EventDate))
	row("Number of people", util.StringOrEmpty(msg.NumberOfPeople))
	row("Occasion", util.StringOrEmpty(msg.Occasion))
	row("Allergies", util.StringOrEmpty(msg.Allergies))
	row("Menus interested", util.StringOrEmpty(msg.MenusInterested))
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Message))
	fmt.Fprintf(&b, "<p><em>Sent %s</em></p>", html.EscapeString(msg.DateSent))
	return b.String()
}

// messagesData is the payload for the admin message console.
type messagesData struct {
	Messages []store.ContactMessage
}

// AdminMessages lists all inquiries, newest first.
func (h *ContactHandler) AdminMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.queries.ListContactMessages(r.Context())
	if err != nil {
		logAndInternalError(w, "listing messages", "error", err)
		return
	}

	unread, err := h.queries.CountUnreadContactMessages(r.Context())
	if err != nil {
		slog.Error("counting unread messages", "error", err)
	}

	if err := h.renderer.Render(w, r, "admin/messages", render.TemplateData{
		Title:       "Messages",
		CurrentUser: middleware.GetUser(r),
		UnreadCount: unread,
		Data:        messagesData{Messages: messages},
	}); err != nil {
		logAndInternalError(w, "rendering messages page", "error", err)
	}
}

// ToggleMessageRead flips an inquiry's read flag.
func (h *ContactHandler) ToggleMessageRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectMessages, "message not found")
		return
	}

	if _, found := requireEntityWithRedirect(w, r, h.renderer, redirectMessages, "message", id,
		func(id int64) (store.ContactMessage, error) { return h.queries.GetContactMessage(r.Context(), id) }); !found {
		return
	}

	if err := h.queries.ToggleContactMessageRead(r.Context(), id); err != nil {
		logAndInternalError(w, "toggling message", "error", err, "message_id", id)
		return
	}

	http.Redirect(w, r, redirectMessages, http.StatusSeeOther)
}

// DeleteMessage removes an inquiry.
func (h *ContactHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		flashError(w, r, h.renderer, redirectMessages, "message not found")
		return
	}

	if err := h.queries.DeleteContactMessage(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting message", "error", err, "message_id", id)
		return
	}

	flashSuccess(w, r, h.renderer, redirectMessages, "Message deleted.")
}
