package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/uid"
)

const (
	// HeaderCorrelationID carries the caller's correlation id and is echoed
	// back on every response.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when the caller's proxy sets it instead.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// incomingCorrelationID returns the first usable id sent by the caller.
// Values with control characters are ignored so they never reach log lines.
func incomingCorrelationID(r *http.Request) string {
	for _, name := range []string{HeaderCorrelationID, HeaderRequestID} {
		v := strings.TrimSpace(r.Header.Get(name))
		if v == "" || strings.ContainsFunc(v, func(c rune) bool { return c < 0x20 || c == 0x7f }) {
			continue
		}
		if len(v) > maxCorrelationIDLen {
			v = v[:maxCorrelationIDLen]
		}
		return v
	}
	return ""
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := incomingCorrelationID(r)
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
