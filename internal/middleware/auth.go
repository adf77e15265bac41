package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SubjectKey is the context key for the verified external subject.
	SubjectKey contextKey = "subject"
	// EmailKey is the context key for the verified caller's email.
	EmailKey contextKey = "email"
)

// Subject extracts the verified external subject from the context.
// Returns empty string if the request carried no valid token.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectKey).(string)
	return subject
}

// Email extracts the verified caller's email from the context.
// Returns empty string if not found.
func Email(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// Identity returns an interceptor that verifies the bearer token when one
// is present and stores the verified subject in the request context. It
// never rejects a request itself: enforcing that a caller is identified is
// the authorization gate's job, so that login and registration can share
// the interceptor chain.
func Identity(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					// An invalid token simply yields an unidentified
					// request; the gate turns that into Unauthenticated.
					claims, err := jwtManager.Validate(parts[1])
					if err == nil {
						ctx = context.WithValue(ctx, SubjectKey, claims.Subject)
						ctx = context.WithValue(ctx, EmailKey, claims.Email)
					}
				}
			}

			return next(ctx, req)
		}
	}
}
