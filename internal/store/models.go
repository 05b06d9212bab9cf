package store

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a registered account. The single administrator is marked by an
// explicit role rather than by registration order.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Name         string
	CreatedAt    time.Time
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BlogPost is a blog entry. Date is a display string, matching the
// published format rather than a timestamp column.
type BlogPost struct {
	ID       int64
	AuthorID int64
	Title    string
	Subtitle string
	Date     string
	Body     string
	ImgURL   string
}

// Comment is a reader comment on a post. Comments are immutable once
// created and deliberately survive deletion of their post.
type Comment struct {
	ID       int64
	Text     string
	AuthorID int64
	PostID   int64
}

// CommentWithAuthor joins a comment with its author's display name.
type CommentWithAuthor struct {
	Comment
	AuthorName  string
	AuthorEmail string
}

// Menu is a top-level catalog entry with a unique URL slug. Inactive
// menus are drafts, visible only to the administrator.
type Menu struct {
	ID       int64
	Title    string
	Subtitle sql.NullString
	ImgURL   sql.NullString
	Slug     sql.NullString
	IsActive bool
}

// MenuSection groups items within a menu; Position orders sections for
// display and is client-echoed form state, not recomputed at write time.
type MenuSection struct {
	ID       int64
	MenuID   int64
	Title    string
	Subtitle sql.NullString
	Position int64
}

// MenuItem is a single dish within a section.
type MenuItem struct {
	ID          int64
	SectionID   int64
	Name        string
	Description sql.NullString
	Price       sql.NullString
	ImgURL      sql.NullString
	Position    int64
}

// ContactMessage is a stored inquiry submission. DateSent is a display
// string; persistence succeeds independent of email delivery.
type ContactMessage struct {
	ID              int64
	Name            string
	Email           string
	Phone           sql.NullString
	EventDate       sql.NullString
	NumberOfPeople  sql.NullString
	Occasion        sql.NullString
	Allergies       sql.NullString
	MenusInterested sql.NullString
	Message         string
	IsRead          bool
	DateSent        string
}
