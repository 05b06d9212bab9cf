package store

import "context"

const listBlogPosts = `
SELECT id, author_id, title, subtitle, date, body, img_url
FROM blog_posts ORDER BY id DESC
`

// ListBlogPosts returns every post, newest first.
func (q *Queries) ListBlogPosts(ctx context.Context) ([]BlogPost, error) {
	rows, err := q.db.QueryContext(ctx, listBlogPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []BlogPost
	for rows.Next() {
		var p BlogPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const getBlogPostByID = `
SELECT id, author_id, title, subtitle, date, body, img_url
FROM blog_posts WHERE id = ?
`

// GetBlogPostByID fetches a single post.
func (q *Queries) GetBlogPostByID(ctx context.Context, id int64) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx, rebind(getBlogPostByID), id)
	var p BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL)
	return p, err
}

const getBlogPostByTitle = `
SELECT id, author_id, title, subtitle, date, body, img_url
FROM blog_posts WHERE title = ?
`

// GetBlogPostByTitle fetches a post by its unique title.
func (q *Queries) GetBlogPostByTitle(ctx context.Context, title string) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx, rebind(getBlogPostByTitle), title)
	var p BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL)
	return p, err
}

const createBlogPost = `
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, author_id, title, subtitle, date, body, img_url
`

// CreateBlogPostParams holds the fields for a new post.
type CreateBlogPostParams struct {
	AuthorID int64
	Title    string
	Subtitle string
	Date     string
	Body     string
	ImgURL   string
}

// CreateBlogPost inserts a post and returns the stored record.
func (q *Queries) CreateBlogPost(ctx context.Context, arg CreateBlogPostParams) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx, rebind(createBlogPost),
		arg.AuthorID, arg.Title, arg.Subtitle, arg.Date, arg.Body, arg.ImgURL)
	var p BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL)
	return p, err
}

const updateBlogPost = `
UPDATE blog_posts
SET title = ?, subtitle = ?, body = ?, img_url = ?
WHERE id = ?
`

// UpdateBlogPostParams holds the editable fields of a post. The original
// publish date and author are preserved on edit.
type UpdateBlogPostParams struct {
	ID       int64
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

// UpdateBlogPost rewrites a post's editable fields.
func (q *Queries) UpdateBlogPost(ctx context.Context, arg UpdateBlogPostParams) error {
	_, err := q.db.ExecContext(ctx, rebind(updateBlogPost),
		arg.Title, arg.Subtitle, arg.Body, arg.ImgURL, arg.ID)
	return err
}

const deleteBlogPost = `DELETE FROM blog_posts WHERE id = ?`

// DeleteBlogPost removes a post. Its comments are left in place.
func (q *Queries) DeleteBlogPost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, rebind(deleteBlogPost), id)
	return err
}

const createComment = `
INSERT INTO comments (text, author_id, post_id)
VALUES (?, ?, ?)
RETURNING id, text, author_id, post_id
`

// CreateCommentParams holds the fields for a new comment.
type CreateCommentParams struct {
	Text     string
	AuthorID int64
	PostID   int64
}

// CreateComment inserts a comment and returns the stored record.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, rebind(createComment),
		arg.Text, arg.AuthorID, arg.PostID)
	var c Comment
	err := row.Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID)
	return c, err
}

const listCommentsForPost = `
SELECT c.id, c.text, c.author_id, c.post_id, u.name, u.email
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_id = ?
ORDER BY c.id
`

// ListCommentsForPost returns a post's comments with author display data,
// oldest first.
func (q *Queries) ListCommentsForPost(ctx context.Context, postID int64) ([]CommentWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx, rebind(listCommentsForPost), postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []CommentWithAuthor
	for rows.Next() {
		var c CommentWithAuthor
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID, &c.AuthorName, &c.AuthorEmail); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const countCommentsForPost = `SELECT COUNT(*) FROM comments WHERE post_id = ?`

// CountCommentsForPost returns how many comments a post has, including
// comments whose post has since been deleted.
func (q *Queries) CountCommentsForPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, rebind(countCommentsForPost), postID).Scan(&n)
	return n, err
}
