package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/blogbox/authn"
	"github.com/andrebq/blogbox/internal/httpjson"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	// ProtectedHandle is an httprouter handle that only runs for
	// authenticated requests.
	ProtectedHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, who authn.Principal)

	Authenticator interface {
		Authenticate(header string) (authn.Principal, error)
	}

	SecurityRealm struct {
		auth Authenticator
	}
)

const (
	msgMissingToken = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

func NewRealm(auth Authenticator) *SecurityRealm {
	return &SecurityRealm{
		auth: auth,
	}
}

// Protect rejects requests without a valid bearer token with 401, sensitive
// is never called in that case.
func (s *SecurityRealm) Protect(sensitive ProtectedHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		who, err := s.checkToken(r)
		if err != nil {
			msg := msgInvalidToken
			if errors.Is(err, authn.ErrMissingToken) {
				msg = msgMissingToken
			}
			httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, msg)
			return
		}
		ctx := authn.WithPrincipal(r.Context(), who)
		log := logutil.GetOrDefault(ctx).With().Str("identity_id", who.IdentityID).Logger()
		ctx = logutil.WithLogger(ctx, log)
		sensitive(w, r.WithContext(ctx), ps, who)
	}
}

func (s *SecurityRealm) checkToken(r *http.Request) (authn.Principal, error) {
	log := logutil.GetOrDefault(r.Context())
	who, err := s.auth.Authenticate(r.Header.Get("Authorization"))
	if err != nil {
		if !authn.IsUnauthorized(err) {
			log.Error().Err(err).Msg("Unexpected error while authenticating request")
		} else {
			log.Debug().Err(err).Msg("Request rejected")
		}
		return authn.Principal{}, err
	}
	return who, nil
}
