package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/2beens/weeklyfit/internal/telemetry/tracing"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	TokenHeader = "X-WEEKLYFIT-TOKEN"

	verifiedTokensCacheBytes = 512 * 1024
	verifiedTokenTTLSeconds  = 600
)

type TokenAuth struct {
	tokenHash string
	// bcrypt is slow on purpose, verified tokens are remembered for a while
	verified             *freecache.Cache
	allowedPaths         map[string]bool
	allowedPathsPrefixes []string
}

// NewTokenAuth returns a token check against a bcrypt hash. With an empty
// hash every request passes.
func NewTokenAuth(tokenHash string) *TokenAuth {
	return &TokenAuth{
		tokenHash: tokenHash,
		verified:  freecache.NewCache(verifiedTokensCacheBytes),
		allowedPaths: map[string]bool{
			"/health":  true,
			"/version": true,
			// called by the payment provider, has its own signature check
			"/webhook": true,
		},
	}
}

func (a *TokenAuth) pathIsAlwaysAllowed(path string) bool {
	if a.allowedPaths[path] {
		return true
	}
	for _, prefix := range a.allowedPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (a *TokenAuth) isValid(token string) bool {
	sum := sha256.Sum256([]byte(token))
	if _, err := a.verified.Get(sum[:]); err == nil {
		return true
	}
	if !pkg.CheckTokenHash(token, a.tokenHash) {
		return false
	}
	if err := a.verified.Set(sum[:], []byte{1}, verifiedTokenTTLSeconds); err != nil {
		log.Warnf("cache verified token: %s", err)
	}
	return true
}

func (a *TokenAuth) Check() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.tokenHash == "" || r.Method == http.MethodOptions || a.pathIsAlwaysAllowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			authToken := r.Header.Get(TokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !a.isValid(authToken) {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid token] [auth middleware] unauthorized %s => %s", reqIp, r.URL.Path)
				pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
