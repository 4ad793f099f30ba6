package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/andrebq/blogbox/authn"
	authapi "github.com/andrebq/blogbox/authn/api"
	"github.com/andrebq/blogbox/blog"
	"github.com/andrebq/blogbox/internal/httpjson"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	createRequest struct {
		Title   string   `json:"title" validate:"required,min=3,max=200"`
		Content string   `json:"content" validate:"required,max=100000"`
		Tags    []string `json:"tags" validate:"max=32,dive,max=64"`
	}

	updateRequest struct {
		Title   *string   `json:"title" validate:"omitempty,min=3,max=200"`
		Content *string   `json:"content" validate:"omitempty,min=1,max=100000"`
		Tags    *[]string `json:"tags" validate:"omitempty,max=32,dive,max=64"`
	}

	authorView struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}

	postView struct {
		ID        string      `json:"id"`
		Title     string      `json:"title"`
		Content   string      `json:"content"`
		Author    interface{} `json:"author"`
		Tags      []string    `json:"tags"`
		CreatedAt time.Time   `json:"createdAt"`
		UpdatedAt time.Time   `json:"updatedAt"`
	}
)

const (
	msgNotFound  = "Blog post not found"
	msgForbidden = "Not authorized"

	// httprouter cannot mix a static segment with :id
	healthID = "health"
)

func (r *createRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Tags = normalizeTags(r.Tags)
}

func (r *updateRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	if r.Tags != nil {
		tags := normalizeTags(*r.Tags)
		r.Tags = &tags
	}
}

func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); len(t) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// AsHandler exposes the blog service under /api/blogs.
func AsHandler(ctx context.Context, svc *blog.Service, realm *authapi.SecurityRealm) http.Handler {
	router := httprouter.New()
	router.GET("/api/blogs", list(svc))
	router.POST("/api/blogs", realm.Protect(create(svc)))
	router.GET("/api/blogs/:id", get(svc))
	router.PUT("/api/blogs/:id", realm.Protect(update(svc)))
	router.DELETE("/api/blogs/:id", realm.Protect(remove(svc)))
	return router
}

func health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func list(svc *blog.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		listings, err := svc.List(r.Context())
		if err != nil {
			serverError(w, r, err, "Unable to list posts")
			return
		}
		out := make([]postView, len(listings))
		for i, l := range listings {
			out[i] = populatedView(l)
		}
		httpjson.WriteCacheable(w, r, out)
	}
}

func get(svc *blog.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("id") == healthID {
			health(w, r, ps)
			return
		}
		l, err := svc.Get(r.Context(), ps.ByName("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.WriteCacheable(w, r, populatedView(*l))
	}
}

func create(svc *blog.Service) authapi.ProtectedHandle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params, who authn.Principal) {
		var req createRequest
		if !decode(w, r, &req) {
			return
		}
		p, err := svc.Create(r.Context(), who, blog.NewPost{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, view(p))
	}
}

func update(svc *blog.Service) authapi.ProtectedHandle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, who authn.Principal) {
		var req updateRequest
		if !decode(w, r, &req) {
			return
		}
		p, err := svc.Update(r.Context(), who, ps.ByName("id"), blog.PostUpdate{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpjson.Write(w, http.StatusOK, view(p))
	}
}

func remove(svc *blog.Service) authapi.ProtectedHandle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, who authn.Principal) {
		err := svc.Delete(r.Context(), who, ps.ByName("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, msgNotFound)
	case errors.Is(err, authn.ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, msgForbidden)
	default:
		serverError(w, r, err, "Unable to process blog request")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := httpjson.Decode(r, dst)
	if err == nil {
		return true
	}
	var verr *httpjson.ValidationError
	if errors.As(err, &verr) {
		httpjson.InvalidInput(w, verr)
	} else {
		serverError(w, r, err, "Unable to decode request")
	}
	return false
}

func serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Msg(msg)
	httpjson.ServerError(w)
}

// view renders the author as a plain id, as returned by create and update.
func view(p *blog.Post) postView {
	return postView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func populatedView(l blog.Listing) postView {
	v := view(&l.Post)
	v.Author = authorView{ID: l.Author.ID, Username: l.Author.Username}
	return v
}
