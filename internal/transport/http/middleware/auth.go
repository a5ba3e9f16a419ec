package httpmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/flirting-singles/party-service/internal/security"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// AuthMiddleware requires a valid bearer token and puts the verified
// identity on the request context.
func AuthMiddleware(verifier *security.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}
			identity, err := verifier.Verify(strings.TrimSpace(auth[7:]))
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromCtx(ctx context.Context) (security.Identity, bool) {
	v, ok := ctx.Value(ctxKeyIdentity).(security.Identity)
	return v, ok
}
