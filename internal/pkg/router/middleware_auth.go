package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/twofactor/internal/pkg/jwt"
)

func middlewareAuthentication(verifier jwt.JWT, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, public := publicEndpoints[r.Method][matchedRoutePath(r)]; public {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				writeJSON(w, errorResponse{Message: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

// middlewareAuthorization admits a request when one of its token scopes is
// granted the matched route and method by enforcer.
func middlewareAuthorization(enforcer *casbin.Enforcer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := jwt.GetAuth(r.Context())
			if claims == nil {
				writeJSON(w, errorResponse{Message: "Insufficient scope"}, http.StatusForbidden)
				return
			}

			obj := matchedRoutePath(r)
			for _, scope := range claims.Scopes {
				ok, err := enforcer.Enforce(scope, obj, r.Method)
				if err != nil {
					slog.ErrorContext(r.Context(), "failed to check authorization", "scope", scope, "route", obj, "error", err)
					writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
					return
				}
				if ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, errorResponse{Message: "Insufficient scope"}, http.StatusForbidden)
		})
	}
}
