package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/twofactor/internal/pkg/config"
)

// middlewareMaintenance blocks the routes listed in app.maintenance.endpoints,
// or every non-public route when app.maintenance.enabled is true. Both keys
// are read per request so a config reload takes effect immediately.
func middlewareMaintenance(cfg config.Config, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := matchedRoutePath(r)
			_, public := publicEndpoints[r.Method][route]

			blocked := cfg.GetBool("app.maintenance.enabled") && !public
			if !blocked {
				for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
					if strings.TrimSpace(endpoint) == route {
						blocked = true
						break
					}
				}
			}

			if blocked {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
