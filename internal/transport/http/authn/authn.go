package authn

import (
	"context"
	"errors"
	"net/http"

	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/corray333/littlelemon/internal/transport/http/respond"
)

// authenticator verifies an Authorization header and yields the user id.
type authenticator interface {
	Authenticate(header string) (int64, error)
}

// resolver loads the principal of an authenticated user.
type resolver interface {
	Resolve(ctx context.Context, userID int64) (principal.Principal, error)
}

// Middleware rejects unauthenticated requests with 401 and stores the
// principal of authenticated ones in the request context.
func Middleware(a authenticator, res resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, svcerr.Unauthenticated("authentication credentials were not provided or are invalid").
					WithCause(err))

				return
			}

			p, err := res.Resolve(r.Context(), userID)
			if err != nil {
				respond.Error(w, r, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(principal.WithContext(r.Context(), p)))
		})
	}
}

var errNoPrincipal = errors.New("no principal in request context")

// Principal returns the caller stored by Middleware.
func Principal(r *http.Request) (principal.Principal, error) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		return principal.Principal{}, svcerr.Unauthenticated("authentication required").WithCause(errNoPrincipal)
	}

	return p, nil
}
