package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamehub/internal/app/service"
	"gamehub/internal/common"
	"gamehub/internal/domain/model"
)

type contextKey string

const authSnapshotCtxKey contextKey = "authSnapshot"

// EdgeGate is the cheap pre-filter in front of the admin area. It decodes
// the token payload locally without checking the signature: in the target
// deployment the edge has no access to the signing secret, so this layer is
// deliberately spoofable. Its only job is to keep clearly unauthenticated
// browsers away from protected pages; the authoritative check happens in
// Authenticator when the page hits protected APIs. Keep both layers.
type EdgeGate struct {
	uiPrefixes  []string
	apiPrefixes []string
	loginPath   string
}

func NewEdgeGate(uiPrefixes, apiPrefixes []string, loginPath string) *EdgeGate {
	return &EdgeGate{uiPrefixes: uiPrefixes, apiPrefixes: apiPrefixes, loginPath: loginPath}
}

func (g *EdgeGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if matchesPrefix(path, g.apiPrefixes) {
			if !g.probe(r) {
				common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if matchesPrefix(path, g.uiPrefixes) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, g.loginPath+"?redirect="+url.QueryEscape(path), http.StatusFound)
				return
			}
			if !probeToken(cookie.Value) {
				http.Redirect(w, r, g.loginPath+"?error=unauthorized", http.StatusFound)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (g *EdgeGate) probe(r *http.Request) bool {
	if c, err := r.Cookie(service.SessionCookieName); err == nil && c.Value != "" {
		return probeToken(c.Value)
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return probeToken(strings.TrimPrefix(auth, "Bearer "))
	}
	return false
}

type probeClaims struct {
	Exp     int64 `json:"exp"`
	IsAdmin bool  `json:"is_admin"`
	IsOwner bool  `json:"is_owner"`
}

// probeToken base64-decodes the JWT payload and checks exp and role flags.
// No signature verification; any decode failure is treated as absent auth,
// never as an error.
func probeToken(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var claims probeClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return false
	}
	if claims.Exp <= time.Now().Unix() {
		return false
	}
	return claims.IsAdmin || claims.IsOwner
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Authenticator is the authoritative layer: full signature verification plus
// a live re-read of the user record via the session resolver.
func Authenticator(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := auth.Require(r)
			if err != nil {
				common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), authSnapshotCtxKey, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly requires isAdmin OR isOwner on the resolved snapshot. Must run
// after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap, ok := SnapshotFromContext(r.Context())
		if !ok || (!snap.IsAdmin && !snap.IsOwner) {
			common.RespondWithError(w, http.StatusUnauthorized, common.ErrAdminRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OwnerOnly requires isOwner alone; isAdmin does not qualify.
func OwnerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap, ok := SnapshotFromContext(r.Context())
		if !ok || !snap.IsOwner {
			common.RespondWithError(w, http.StatusUnauthorized, common.ErrOwnerRequired.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func SnapshotFromContext(ctx context.Context) (*model.AuthSnapshot, bool) {
	snap, ok := ctx.Value(authSnapshotCtxKey).(*model.AuthSnapshot)
	return snap, ok
}
