// Package gateway fronts the user and blog services with a single origin so
// the web client only needs to know one address.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/andrebq/blogbox/internal/httpjson"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

var (
	methods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD",
	}
)

// AsHandler proxies /api/blogs to blogs and the remaining /api routes to
// users. When staticDir is not empty, other paths are served from it with
// index.html as the fallback for client side routes.
func AsHandler(ctx context.Context, users *url.URL, blogs *url.URL, staticDir string) (http.Handler, error) {
	if users == nil || blogs == nil {
		return nil, errors.New("gateway: users and blogs endpoints are required")
	}
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.HandleMethodNotAllowed = false

	usersProxy := proxy(ctx, "users", users)
	blogsProxy := proxy(ctx, "blogs", blogs)

	for _, m := range methods {
		router.Handler(m, "/api/blogs/*rest", blogsProxy)
		router.Handler(m, "/api/users/*rest", usersProxy)
		router.Handler(m, "/api/protected", usersProxy)
	}

	var static http.Handler
	if len(staticDir) > 0 {
		st, err := os.Stat(staticDir)
		if err != nil {
			return nil, err
		} else if !st.IsDir() {
			return nil, errors.New("gateway: static dir must be a directory")
		}
		static = spa(staticDir)
	}
	router.NotFound = fallback(blogsProxy, static)
	return logutil.Middleware(logutil.GetOrDefault(ctx), router), nil
}

func proxy(ctx context.Context, name string, target *url.URL) http.Handler {
	log := logutil.GetOrDefault(ctx).With().Str("upstream", name).Str("target", target.String()).Logger()
	p := httputil.NewSingleHostReverseProxy(target)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream unavailable")
		httpjson.Error(w, http.StatusBadGateway, httpjson.CodeServerError, "Service unavailable")
	}
	return p
}

func fallback(blogs http.Handler, static http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/blogs":
			blogs.ServeHTTP(w, r)
		case static != nil && !strings.HasPrefix(r.URL.Path, "/api/"):
			static.ServeHTTP(w, r)
		default:
			httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "Not found")
		}
	})
}

func spa(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if st, err := os.Stat(name); err == nil && !st.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}
