package actor

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

type contextKey struct{}

// Middleware extracts the acting operator's name for audit stamping on
// workflow rows. It reads the Bearer token's name/sub claim when one is
// present (token verification belongs to the gateway in front of this
// service), falling back to the X-Actor header. Requests without either
// proceed with an empty actor.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := fromToken(r.Header.Get("Authorization"))
		if name == "" {
			name = r.Header.Get("X-Actor")
		}
		ctx := context.WithValue(r.Context(), contextKey{}, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the actor name stamped by Middleware, or "" if none.
func FromContext(ctx context.Context) string {
	name, _ := ctx.Value(contextKey{}).(string)
	return name
}

func fromToken(authorization string) string {
	if !strings.HasPrefix(authorization, "Bearer ") {
		return ""
	}
	raw := strings.TrimPrefix(authorization, "Bearer ")
	claims := jwt.MapClaims{}
	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return ""
	}
	if name, ok := claims["name"].(string); ok && name != "" {
		return name
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}
