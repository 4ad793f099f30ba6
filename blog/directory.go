package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// Directory resolves author ids to usernames.
	Directory interface {
		Usernames(ctx context.Context, ids ...string) (map[string]string, error)
	}

	UsernameSource interface {
		UsernamesByID(ctx context.Context, ids ...string) (map[string]string, error)
	}

	// CachedDirectory keeps usernames in memory for a while, usernames
	// never change once an identity is created.
	CachedDirectory struct {
		source UsernameSource
		cache  *bigcache.BigCache
	}
)

func NewCachedDirectory(source UsernameSource, ttl time.Duration) (*CachedDirectory, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("blog: unable to create author cache, cause %w", err)
	}
	return &CachedDirectory{
		source: source,
		cache:  cache,
	}, nil
}

func (c *CachedDirectory) Usernames(ctx context.Context, ids ...string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	var missing []string
	for _, id := range ids {
		if _, done := out[id]; done {
			continue
		}
		buf, err := c.cache.Get(id)
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			missing = append(missing, id)
			out[id] = ""
			continue
		} else if err != nil {
			return nil, fmt.Errorf("blog: unable to read author cache, cause %w", err)
		}
		out[id] = string(buf)
	}
	if len(missing) == 0 {
		return out, nil
	}
	found, err := c.source.UsernamesByID(ctx, missing...)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		name, ok := found[id]
		if !ok {
			delete(out, id)
			continue
		}
		out[id] = name
		c.cache.Set(id, []byte(name))
	}
	return out, nil
}

func (c *CachedDirectory) Close() error {
	return c.cache.Close()
}
