package blog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andrebq/blogbox/internal/sqlitedb"
	"github.com/google/uuid"
)

type (
	Store struct {
		db  *sql.DB
		now func() time.Time
	}

	scanner interface {
		Scan(...interface{}) error
	}
)

const (
	postColumns = `post_id, title, content, author_id, tags, created_at, updated_at`
)

var (
	schema = []string{
		`create table if not exists posts(
			post_id text not null primary key,
			title text not null,
			content text not null,
			author_id text not null,
			tags text not null default '[]',
			created_at integer not null,
			updated_at integer not null
		)`,
		`create index if not exists idx_posts_created_at
			on posts(created_at)`,
	}
)

func OpenStore(ctx context.Context, db *sql.DB) (*Store, error) {
	err := sqlitedb.Migrate(ctx, db, schema...)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to setup store, cause %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Create(ctx context.Context, author string, n NewPost) (*Post, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	p := &Post{
		ID:        uuid.NewString(),
		Title:     n.Title,
		Content:   n.Content,
		Author:    author,
		Tags:      append([]string{}, n.Tags...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to encode tags, cause %w", err)
	}
	_, err = s.db.ExecContext(ctx, `insert into posts(`+postColumns+`) values (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Content, p.Author, string(tags), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("blog: unable to create post, cause %w", err)
	}
	return p, nil
}

func (s *Store) ByID(ctx context.Context, id string) (*Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `select `+postColumns+` from posts where post_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("blog: unable to read post %v, cause %w", id, err)
	}
	return p, nil
}

// List returns every post, newest first.
func (s *Store) List(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `select `+postColumns+` from posts order by created_at desc, rowid desc`)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to list posts, cause %w", err)
	}
	defer rows.Close()
	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("blog: unable to list posts, cause %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update applies upd to the post, the author is never modified.
func (s *Store) Update(ctx context.Context, id string, upd PostUpdate) (*Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()

	p, err := scanPost(tx.QueryRowContext(ctx, `select `+postColumns+` from posts where post_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("blog: unable to read post %v, cause %w", id, err)
	}
	upd.apply(p)
	p.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to encode tags, cause %w", err)
	}
	_, err = tx.ExecContext(ctx, `update posts set title = ?, content = ?, tags = ?, updated_at = ? where post_id = ?`,
		p.Title, p.Content, string(tags), p.UpdatedAt.UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to update post %v, cause %w", id, err)
	}
	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("blog: unable to commit update of post %v, cause %w", id, err)
	}
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from posts where post_id = ?`, id)
	if err != nil {
		return fmt.Errorf("blog: unable to delete post %v, cause %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("blog: unable to delete post %v, cause %w", id, err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row scanner) (*Post, error) {
	var p Post
	var tags string
	var created, updated int64
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &tags, &created, &updated)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal([]byte(tags), &p.Tags)
	if err != nil {
		return nil, fmt.Errorf("invalid tags for %v, cause %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}
