package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/barangaysm/portal-api/internal/domain"
	jwtinfra "github.com/barangaysm/portal-api/internal/infrastructure/jwt"
)

type contextKey string

const identityKey contextKey = "registration_identity"

// Identity is the verified subject a registration credential binds. It is
// placed on the request context only after every check in Credential passes.
type Identity struct {
	Email        string
	CredentialID string
}

type tokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

type livenessStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// Credential guards the registration-finalize endpoint. A bearer token is
// accepted only when its signature, expiry and purpose check out AND its
// liveness record is still present in the ephemeral store; a valid signature
// alone says nothing about whether the credential was already redeemed.
//
// Distinct signature/expiry/purpose failures collapse into one message so the
// endpoint cannot be used to probe which check failed. The liveness record is
// not deleted here; consumption happens only after the account write commits.
func Credential(verifier tokenVerifier, store livenessStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := verifier.Verify(tokenStr)
			if err != nil || claims.Purpose != jwtinfra.PurposeRegistration {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			email, err := store.Get(r.Context(), domain.CredentialKey(claims.ID))
			switch {
			case errors.Is(err, domain.ErrNotFound):
				writeJSONError(w, http.StatusUnauthorized, "token already used or invalid")
				return
			case err != nil:
				writeJSONError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, &Identity{
				Email:        email,
				CredentialID: claims.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the verified registration identity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}
