package store

import (
	"context"
	"database/sql"
)

const createContactMessage = `
INSERT INTO contact_messages
	(name, email, phone, event_date, number_of_people, occasion,
	 allergies, menus_interested, message, is_read, date_sent)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, email, phone, event_date, number_of_people, occasion,
	allergies, menus_interested, message, is_read, date_sent
`

// CreateContactMessageParams holds the fields of a submitted inquiry.
type CreateContactMessageParams struct {
	Name            string
	Email           string
	Phone           sql.NullString
	EventDate       sql.NullString
	NumberOfPeople  sql.NullString
	Occasion        sql.NullString
	Allergies       sql.NullString
	MenusInterested sql.NullString
	Message         string
	DateSent        string
}

// CreateContactMessage stores an inquiry, unread, and returns the record.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, rebind(createContactMessage),
		arg.Name, arg.Email, arg.Phone, arg.EventDate, arg.NumberOfPeople,
		arg.Occasion, arg.Allergies, arg.MenusInterested, arg.Message,
		false, arg.DateSent)
	return scanContactMessage(row)
}

const getContactMessage = `
SELECT id, name, email, phone, event_date, number_of_people, occasion,
	allergies, menus_interested, message, is_read, date_sent
FROM contact_messages WHERE id = ?
`

// GetContactMessage fetches a single stored inquiry.
func (q *Queries) GetContactMessage(ctx context.Context, id int64) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, rebind(getContactMessage), id)
	return scanContactMessage(row)
}

const listContactMessages = `
SELECT id, name, email, phone, event_date, number_of_people, occasion,
	allergies, menus_interested, message, is_read, date_sent
FROM contact_messages ORDER BY id DESC
`

// ListContactMessages returns every stored inquiry, newest first.
func (q *Queries) ListContactMessages(ctx context.Context) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.EventDate,
			&m.NumberOfPeople, &m.Occasion, &m.Allergies, &m.MenusInterested,
			&m.Message, &m.IsRead, &m.DateSent); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

const toggleContactMessageRead = `
UPDATE contact_messages SET is_read = NOT is_read WHERE id = ?
`

// ToggleContactMessageRead flips the read flag. Toggling twice restores
// the original state.
func (q *Queries) ToggleContactMessageRead(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, rebind(toggleContactMessageRead), id)
	return err
}

const deleteContactMessage = `DELETE FROM contact_messages WHERE id = ?`

// DeleteContactMessage removes a stored inquiry.
func (q *Queries) DeleteContactMessage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, rebind(deleteContactMessage), id)
	return err
}

const countUnreadContactMessages = `
SELECT COUNT(*) FROM contact_messages WHERE is_read = ?
`

// CountUnreadContactMessages returns how many inquiries are still unread,
// shown as a badge in the admin navigation.
func (q *Queries) CountUnreadContactMessages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, rebind(countUnreadContactMessages), false).Scan(&n)
	return n, err
}

func scanContactMessage(row *sql.Row) (ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.EventDate,
		&m.NumberOfPeople, &m.Occasion, &m.Allergies, &m.MenusInterested,
		&m.Message, &m.IsRead, &m.DateSent)
	return m, err
}
