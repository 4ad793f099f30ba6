// Package platform wires configuration, stores and handlers of the user and
// blog services.
package platform

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/andrebq/blogbox/authn"
	authapi "github.com/andrebq/blogbox/authn/api"
	"github.com/andrebq/blogbox/blog"
	blogapi "github.com/andrebq/blogbox/blog/api"
	"github.com/andrebq/blogbox/identity"
	identityapi "github.com/andrebq/blogbox/identity/api"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/andrebq/blogbox/internal/sqlitedb"
	"github.com/rs/cors"
)

type (
	Config struct {
		DBPath         string
		Secret         []byte
		PasswordScheme authn.Scheme
		CORSOrigins    []string
		AuthorCacheTTL time.Duration

		// Hasher overrides PasswordScheme when set.
		Hasher authn.Hasher
	}

	Platform struct {
		db      *sql.DB
		authors *blog.CachedDirectory
		realm   *authapi.SecurityRealm
		cors    *cors.Cors

		Codec      *authn.Codec
		Identities *identity.Service
		Blogs      *blog.Service
	}
)

const (
	DefaultDBPath         = "blogbox.db"
	DefaultAuthorCacheTTL = 10 * time.Minute
)

func Open(ctx context.Context, cfg Config) (*Platform, error) {
	if len(cfg.DBPath) == 0 {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.AuthorCacheTTL == 0 {
		cfg.AuthorCacheTTL = DefaultAuthorCacheTTL
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	codec, err := authn.NewCodec(cfg.Secret)
	if err != nil {
		return nil, err
	}
	hasher := cfg.Hasher
	if hasher == nil {
		hasher, err = authn.NewHasher(cfg.PasswordScheme)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlitedb.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	identities, err := identity.OpenStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	posts, err := blog.OpenStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	authors, err := blog.NewCachedDirectory(identities, cfg.AuthorCacheTTL)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Platform{
		db:      db,
		authors: authors,
		realm:   authapi.NewRealm(codec),
		cors: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "If-None-Match"},
			ExposedHeaders: []string{"ETag", "X-Request-Id"},
		}),
		Codec:      codec,
		Identities: identity.NewService(identities, hasher, codec),
		Blogs:      blog.NewService(posts, authors),
	}, nil
}

// UsersHandler serves the user service.
func (p *Platform) UsersHandler(ctx context.Context) http.Handler {
	return p.wrap(ctx, "users", identityapi.AsHandler(ctx, p.Identities, p.realm))
}

// BlogsHandler serves the blog service.
func (p *Platform) BlogsHandler(ctx context.Context) http.Handler {
	return p.wrap(ctx, "blogs", blogapi.AsHandler(ctx, p.Blogs, p.realm))
}

func (p *Platform) wrap(ctx context.Context, service string, h http.Handler) http.Handler {
	log := logutil.GetOrDefault(ctx).With().Str("service", service).Logger()
	return logutil.Middleware(log, p.cors.Handler(h))
}

func (p *Platform) Close() error {
	p.authors.Close()
	return p.db.Close()
}
