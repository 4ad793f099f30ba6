package api

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andrebq/blogbox/authn"
	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestProtect(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	codec, err := authn.NewCodec([]byte("filter-test-secret-0123456789"), authn.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	tk, err := codec.Issue("alice-id")
	if err != nil {
		t.Fatal(err)
	}
	other, err := authn.NewCodec([]byte("some-other-secret-0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	forged, err := other.Issue("alice-id")
	if err != nil {
		t.Fatal(err)
	}

	sr := NewRealm(codec)
	var count uint32
	var seen string
	router := httprouter.New()
	router.GET("/", sr.Protect(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params, who authn.Principal) {
		atomic.AddUint32(&count, 1)
		seen = who.IdentityID
		if fromCtx, ok := authn.PrincipalFrom(r.Context()); !ok || fromCtx != who {
			t.Error("principal should be available from the request context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	apitest.Handler(router).Get("/").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "unauthorized")).
		Assert(jsonpath.Equal("$.message", "No token, authorization denied")).
		End()
	apitest.Handler(router).Get("/").Header("Authorization", "Bearer garbage").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Token is not valid")).
		End()
	apitest.Handler(router).Get("/").Header("Authorization", fmt.Sprintf("Bearer %v", forged.Value)).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.Handler(router).Get("/").Header("Authorization", fmt.Sprintf("Bearer %v", tk.Value)).
		Expect(t).
		Status(http.StatusOK).
		End()

	now = issuedAt.Add(authn.TokenLifetime)
	apitest.Handler(router).Get("/").Header("Authorization", fmt.Sprintf("Bearer %v", tk.Value)).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Token is not valid")).
		End()

	if count != 1 {
		t.Fatal("Protected endpoint should have been called only once")
	}
	if seen != "alice-id" {
		t.Fatalf("Protected endpoint got the wrong principal: %q", seen)
	}
}
