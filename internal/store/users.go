package store

import "context"

const createUser = `
INSERT INTO users (email, password_hash, role, name)
VALUES (?, ?, ?, ?)
RETURNING id, email, password_hash, role, name, created_at
`

// CreateUserParams holds the fields for a new account.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         string
}

// CreateUser inserts a new user and returns the stored record. The unique
// index on email surfaces duplicates as a constraint error.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, rebind(createUser),
		arg.Email, arg.PasswordHash, arg.Role, arg.Name)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password_hash, role, name, created_at
FROM users WHERE email = ?
`

// GetUserByEmail looks up a user by their login email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, rebind(getUserByEmail), email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, password_hash, role, name, created_at
FROM users WHERE id = ?
`

// GetUserByID looks up a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, rebind(getUserByID), id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt)
	return u, err
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers returns the number of registered accounts.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}
