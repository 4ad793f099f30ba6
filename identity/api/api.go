package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/andrebq/blogbox/authn"
	authapi "github.com/andrebq/blogbox/authn/api"
	"github.com/andrebq/blogbox/identity"
	"github.com/andrebq/blogbox/internal/httpjson"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	registerRequest struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=6,max=128"`
	}

	loginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	profileRequest struct {
		Bio       *string   `json:"bio" validate:"omitempty,max=500"`
		Interests *[]string `json:"interests" validate:"omitempty,max=32,dive,max=64"`
		Avatar    *string   `json:"avatar" validate:"omitempty,max=2048"`
	}

	sessionResponse struct {
		Token string           `json:"token"`
		User  identity.Summary `json:"user"`
	}
)

func (r *registerRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = normalizeEmail(r.Email)
}

func (r *loginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (r *profileRequest) Normalize() {
	if r.Bio != nil {
		bio := strings.TrimSpace(*r.Bio)
		r.Bio = &bio
	}
	if r.Avatar != nil {
		avatar := strings.TrimSpace(*r.Avatar)
		r.Avatar = &avatar
	}
	if r.Interests != nil {
		interests := make([]string, 0, len(*r.Interests))
		for _, v := range *r.Interests {
			if v = strings.TrimSpace(v); len(v) > 0 {
				interests = append(interests, v)
			}
		}
		r.Interests = &interests
	}
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// AsHandler exposes the user service, every route lives under /api.
func AsHandler(ctx context.Context, svc *identity.Service, realm *authapi.SecurityRealm) http.Handler {
	router := httprouter.New()
	router.POST("/api/users/register", register(svc))
	router.POST("/api/users/login", login(svc))
	router.GET("/api/users/profile", realm.Protect(profile(svc)))
	router.PUT("/api/users/profile", realm.Protect(updateProfile(svc)))
	router.GET("/api/protected", realm.Protect(protected))
	router.GET("/health", health)
	return router
}

func register(svc *identity.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req registerRequest
		if !decode(w, r, &req) {
			return
		}
		session, err := svc.Register(r.Context(), req.Username, req.Email, req.Password)
		switch {
		case errors.Is(err, identity.ErrDuplicateIdentity):
			httpjson.Error(w, http.StatusBadRequest, httpjson.CodeDuplicateIdentity, "User already exists")
		case errors.Is(err, authn.ErrSecretTooLong):
			httpjson.Error(w, http.StatusBadRequest, httpjson.CodeValidation, "password is too long")
		case err != nil:
			serverError(w, r, err, "Unable to register user")
		default:
			httpjson.Write(w, http.StatusCreated, toSession(session))
		}
	}
}

func login(svc *identity.Service) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req loginRequest
		if !decode(w, r, &req) {
			return
		}
		session, err := svc.Login(r.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, authn.ErrInvalidCredential):
			httpjson.Error(w, http.StatusBadRequest, httpjson.CodeInvalidCredentials, "Invalid credentials")
		case err != nil:
			serverError(w, r, err, "Unable to login")
		default:
			httpjson.Write(w, http.StatusOK, toSession(session))
		}
	}
}

func profile(svc *identity.Service) authapi.ProtectedHandle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params, who authn.Principal) {
		id, err := svc.Profile(r.Context(), who)
		writeIdentity(w, r, id, err)
	}
}

func updateProfile(svc *identity.Service) authapi.ProtectedHandle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params, who authn.Principal) {
		var req profileRequest
		if !decode(w, r, &req) {
			return
		}
		id, err := svc.UpdateProfile(r.Context(), who, identity.ProfileUpdate{
			Bio:       req.Bio,
			Interests: req.Interests,
			Avatar:    req.Avatar,
		})
		writeIdentity(w, r, id, err)
	}
}

func writeIdentity(w http.ResponseWriter, r *http.Request, id *identity.Identity, err error) {
	switch {
	case errors.Is(err, identity.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "User not found")
	case err != nil:
		serverError(w, r, err, "Unable to load profile")
	default:
		httpjson.Write(w, http.StatusOK, id)
	}
}

func protected(w http.ResponseWriter, r *http.Request, _ httprouter.Params, who authn.Principal) {
	httpjson.Write(w, http.StatusOK, map[string]string{
		"message": "This is a protected route",
		"userId":  who.IdentityID,
	})
}

func health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
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

func toSession(s *identity.Session) sessionResponse {
	return sessionResponse{
		Token: s.Token.Value,
		User:  s.Identity.Summary(),
	}
}
