package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andrebq/blogbox/internal/sqlitedb"
	"github.com/google/uuid"
)

type (
	// Store is the credential store, username and email are unique.
	Store struct {
		db  *sql.DB
		now func() time.Time
	}

	scanner interface {
		Scan(...interface{}) error
	}
)

const (
	identityColumns = `identity_id, username, email, password_hash, bio, interests, avatar, created_at, updated_at`
)

var (
	schema = []string{
		`create table if not exists identities(
			identity_id text not null primary key,
			username text not null,
			email text not null,
			password_hash text not null,
			bio text not null default '',
			interests text not null default '[]',
			avatar text not null default '',
			created_at integer not null,
			updated_at integer not null
		)`,
		`create unique index if not exists idx_identities_username
			on identities(username)`,
		`create unique index if not exists idx_identities_email
			on identities(email)`,
	}
)

// OpenStore prepares db to hold identities.
func OpenStore(ctx context.Context, db *sql.DB) (*Store, error) {
	err := sqlitedb.Migrate(ctx, db, schema...)
	if err != nil {
		return nil, fmt.Errorf("identity: unable to setup store, cause %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Create(ctx context.Context, n NewIdentity) (*Identity, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	id := &Identity{
		ID:           uuid.NewString(),
		Username:     n.Username,
		Email:        n.Email,
		PasswordHash: n.PasswordHash,
		Profile:      Profile{Interests: []string{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.db.ExecContext(ctx, `insert into identities(`+identityColumns+`)
		values (?, ?, ?, ?, '', '[]', '', ?, ?)`,
		id.ID, id.Username, id.Email, id.PasswordHash, now.UnixMilli(), now.UnixMilli())
	if sqlitedb.IsUniqueViolation(err) {
		return nil, ErrDuplicateIdentity
	} else if err != nil {
		return nil, fmt.Errorf("identity: unable to create %v, cause %w", n.Username, err)
	}
	return id, nil
}

// Exists reports whether username or email are already taken.
func (s *Store) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from identities where username = ? or email = ?`, username, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("identity: unable to check for existing identities, cause %w", err)
	}
	return count > 0, nil
}

func (s *Store) ByID(ctx context.Context, id string) (*Identity, error) {
	return s.lookup(s.db.QueryRowContext(ctx, `select `+identityColumns+` from identities where identity_id = ?`, id))
}

func (s *Store) ByEmail(ctx context.Context, email string) (*Identity, error) {
	return s.lookup(s.db.QueryRowContext(ctx, `select `+identityColumns+` from identities where email = ?`, email))
}

func (s *Store) lookup(row *sql.Row) (*Identity, error) {
	id, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("identity: unable to read identity, cause %w", err)
	}
	return id, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Identity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("identity: unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()

	current, err := scanIdentity(tx.QueryRowContext(ctx, `select `+identityColumns+` from identities where identity_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("identity: unable to read identity %v, cause %w", id, err)
	}
	upd.apply(&current.Profile)
	current.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	interests, err := json.Marshal(current.Profile.Interests)
	if err != nil {
		return nil, fmt.Errorf("identity: unable to encode interests, cause %w", err)
	}
	_, err = tx.ExecContext(ctx, `update identities set bio = ?, interests = ?, avatar = ?, updated_at = ? where identity_id = ?`,
		current.Profile.Bio, string(interests), current.Profile.Avatar, current.UpdatedAt.UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("identity: unable to update profile of %v, cause %w", id, err)
	}
	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("identity: unable to commit profile update of %v, cause %w", id, err)
	}
	return current, nil
}

// UsernamesByID resolves the username of each known id, unknown ids are
// left out of the result.
func (s *Store) UsernamesByID(ctx context.Context, ids ...string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := s.db.QueryContext(ctx, `select identity_id, username from identities where identity_id in (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("identity: unable to resolve usernames, cause %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, username string
		err = rows.Scan(&id, &username)
		if err != nil {
			return nil, fmt.Errorf("identity: unable to resolve usernames, cause %w", err)
		}
		out[id] = username
	}
	return out, rows.Err()
}

func scanIdentity(row scanner) (*Identity, error) {
	var id Identity
	var interests string
	var created, updated int64
	err := row.Scan(&id.ID, &id.Username, &id.Email, &id.PasswordHash,
		&id.Profile.Bio, &interests, &id.Profile.Avatar, &created, &updated)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal([]byte(interests), &id.Profile.Interests)
	if err != nil {
		return nil, fmt.Errorf("invalid interests for %v, cause %w", id.ID, err)
	}
	if id.Profile.Interests == nil {
		id.Profile.Interests = []string{}
	}
	id.CreatedAt = time.UnixMilli(created).UTC()
	id.UpdatedAt = time.UnixMilli(updated).UTC()
	return &id, nil
}
