package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/andrebq/blogbox/authn"
	authapi "github.com/andrebq/blogbox/authn/api"
	"github.com/andrebq/blogbox/blog"
	"github.com/andrebq/blogbox/internal/httpjson"
	"github.com/andrebq/blogbox/internal/testutil"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
)

type (
	staticNames map[string]string

	fixture struct {
		handler http.Handler
		alice   string
		bob     string
	}
)

func (s staticNames) UsernamesByID(_ context.Context, ids ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if n, ok := s[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func captureJSON(out interface{}) apitest.Assert {
	return func(res *http.Response, _ *http.Request) error {
		buf, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		res.Body = io.NopCloser(bytes.NewReader(buf))
		return json.Unmarshal(buf, out)
	}
}

func acquireFixture(ctx context.Context, t *testing.T) (*fixture, func()) {
	db, cleanup := testutil.AcquireDatabase(ctx, t, "blogs.db")
	store, err := blog.OpenStore(ctx, db)
	require.NoError(t, err)
	dir, err := blog.NewCachedDirectory(staticNames{"alice-id": "alice", "bob-id": "bob"}, time.Minute)
	require.NoError(t, err)
	codec, err := authn.NewCodec([]byte("blog-api-secret-0123456789"))
	require.NoError(t, err)
	alice, err := codec.Issue("alice-id")
	require.NoError(t, err)
	bob, err := codec.Issue("bob-id")
	require.NoError(t, err)

	f := &fixture{
		handler: AsHandler(ctx, blog.NewService(store, dir), authapi.NewRealm(codec)),
		alice:   "Bearer " + alice.Value,
		bob:     "Bearer " + bob.Value,
	}
	return f, func() {
		dir.Close()
		cleanup()
	}
}

func (f *fixture) createPost(t *testing.T) string {
	var out struct {
		ID string `json:"id"`
	}
	apitest.Handler(f.handler).Post("/api/blogs").
		Header("Authorization", f.alice).
		JSON(`{"title":"  Hello world  ","content":"first post","tags":["go", " "]}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(captureJSON(&out)).
		Assert(jsonpath.Equal("$.title", "Hello world")).
		Assert(jsonpath.Equal("$.author", "alice-id")).
		Assert(jsonpath.Len("$.tags", 1)).
		End()
	require.NotEmpty(t, out.ID)
	return out.ID
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()

	apitest.Handler(f.handler).Post("/api/blogs").
		JSON(`{"title":"Hello","content":"x"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.Handler(f.handler).Post("/api/blogs").
		Header("Authorization", f.alice).
		JSON(`{"title":" ab ","content":""}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "validation_error")).
		Assert(jsonpath.Present("$.fields.title")).
		Assert(jsonpath.Present("$.fields.content")).
		End()
	f.createPost(t)
}

func TestReadAndList(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	id := f.createPost(t)

	var etag string
	apitest.Handler(f.handler).Get("/api/blogs/"+id).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.id", id)).
		Assert(jsonpath.Equal("$.author.id", "alice-id")).
		Assert(jsonpath.Equal("$.author.username", "alice")).
		Assert(func(res *http.Response, _ *http.Request) error {
			etag = res.Header.Get("ETag")
			if etag == "" {
				return fmt.Errorf("missing etag")
			}
			return nil
		}).
		End()
	apitest.Handler(f.handler).Get("/api/blogs/"+id).
		Header("If-None-Match", etag).
		Expect(t).
		Status(http.StatusNotModified).
		End()

	apitest.Handler(f.handler).Get("/api/blogs").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].author.username", "alice")).
		End()

	apitest.Handler(f.handler).Get("/api/blogs/5e0e7a4c-5b4b-4d8e-9c51-1f1f7c3f0c11").
		Expect(t).
		Status(http.StatusNotFound).
		Body(`{"error":"not_found","message":"Blog post not found"}`).
		End()
	apitest.Handler(f.handler).Get("/api/blogs/not-a-uuid").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestEmptyList(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()

	apitest.Handler(f.handler).Get("/api/blogs").
		Expect(t).
		Status(http.StatusOK).
		Header("ETag", httpjson.ETag([]byte(`[]`))).
		Body(`[]`).
		End()
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()
	id := f.createPost(t)

	apitest.Handler(f.handler).Put("/api/blogs/"+id).
		Header("Authorization", f.bob).
		JSON(`{"title":"Hijacked"}`).
		Expect(t).
		Status(http.StatusForbidden).
		Body(`{"error":"forbidden","message":"Not authorized"}`).
		End()
	apitest.Handler(f.handler).Delete("/api/blogs/"+id).
		Header("Authorization", f.bob).
		Expect(t).
		Status(http.StatusForbidden).
		End()
	apitest.Handler(f.handler).Put("/api/blogs/"+id).
		Header("Authorization", f.alice).
		JSON(`{"title":""}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
	apitest.Handler(f.handler).Put("/api/blogs/"+id).
		Header("Authorization", f.alice).
		JSON(`{"content":"edited","author":"bob-id"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "Hello world")).
		Assert(jsonpath.Equal("$.content", "edited")).
		Assert(jsonpath.Equal("$.author", "alice-id")).
		End()
	apitest.Handler(f.handler).Delete("/api/blogs/"+id).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.Handler(f.handler).Delete("/api/blogs/"+id).
		Header("Authorization", f.alice).
		Expect(t).
		Status(http.StatusNoContent).
		End()
	apitest.Handler(f.handler).Put("/api/blogs/"+id).
		Header("Authorization", f.bob).
		JSON(`{"title":"Too late"}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	f, cleanup := acquireFixture(ctx, t)
	defer cleanup()

	apitest.Handler(f.handler).Get("/api/blogs/health").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"status":"ok"}`).
		End()
}
