package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/twofactor/internal/pkg/clock"
	"github.com/shandysiswandi/twofactor/internal/pkg/config"
	"github.com/shandysiswandi/twofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/twofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/twofactor/internal/pkg/jwt"
	"github.com/shandysiswandi/twofactor/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticID string

func (s staticID) Generate() string { return string(s) }

type created struct {
	Valid bool `json:"valid"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "done" }

type fixture struct {
	router *Router
	token  func(scopes ...string) string
}

func newFixture(t *testing.T, yaml string) fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml), config.WithoutWatch())
	require.NoError(t, err)

	signer, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("k", 64)),
		Issuer: "twofactor",
		TTL:    time.Hour,
		Clock:  clock.New(),
		UUID:   staticID("jti"),
	})
	require.NoError(t, err)

	ro := NewRouter(Config{
		Config:     cfg,
		UUID:       staticID("generated-cid"),
		JWT:        signer,
		Instrument: instrument.NewNoop(),
	})

	return fixture{
		router: ro,
		token: func(scopes ...string) string {
			tok, err := signer.Generate("identity", scopes)
			require.NoError(t, err)
			return "Bearer " + tok
		},
	}
}

func do(ro http.Handler, method, path, auth, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter(t *testing.T) {
	t.Run("PublicHealth", func(t *testing.T) {
		f := newFixture(t, "app: {}")

		rec := do(f.router, http.MethodGet, "/health", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode(t, rec)["data"].(map[string]any)["status"])
		assert.Equal(t, "generated-cid", rec.Header().Get(HeaderCorrelationID))
	})

	t.Run("AuthRequired", func(t *testing.T) {
		f := newFixture(t, "app: {}")
		f.router.GET("/private", func(*Request) (any, error) { return created{}, nil })

		rec := do(f.router, http.MethodGet, "/private", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = do(f.router, http.MethodGet, "/private", "Bearer nope", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("SuccessEnvelope", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "app: {}")
		f.router.Scope(jwt.ScopeVerify).POST("/owners/:owner/verify", func(r *Request) (any, error) {
			id, err := r.GetParamInt64("owner")
			if err != nil {
				return nil, err
			}
			var body struct {
				Code string `json:"code"`
			}
			if err := r.DecodeBody(&body); err != nil {
				return nil, err
			}
			return created{Valid: id == 9 && body.Code == "123456"}, nil
		})

		// Act
		rec := do(f.router, http.MethodPost, "/owners/9/verify", f.token(jwt.ScopeVerify), `{"code":"123456"}`,
			HeaderCorrelationID, "cid-7")

		// Assert
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "done", body["message"])
		assert.Equal(t, true, body["data"].(map[string]any)["valid"])
		assert.Equal(t, "cid-7", rec.Header().Get(HeaderCorrelationID))
	})

	t.Run("MissingScope", func(t *testing.T) {
		f := newFixture(t, "app: {}")
		f.router.Scope(jwt.ScopeManage).DELETE("/owners/:owner", func(*Request) (any, error) { return nil, nil })

		rec := do(f.router, http.MethodDelete, "/owners/1", f.token(jwt.ScopeVerify), "")

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("GrantIsPerRouteAndMethod", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "app: {}")
		verify := f.router.Scope(jwt.ScopeVerify)
		manage := f.router.Scope(jwt.ScopeManage)
		verify.POST("/owners/:owner/verify", func(*Request) (any, error) { return created{}, nil })
		manage.GET("/owners/:owner", func(*Request) (any, error) { return created{}, nil })
		manage.DELETE("/owners/:owner", func(*Request) (any, error) { return nil, nil })
		both := f.token(jwt.ScopeVerify, jwt.ScopeManage)

		// Act & Assert
		assert.Equal(t, http.StatusCreated, do(f.router, http.MethodPost, "/owners/1/verify", f.token(jwt.ScopeVerify), "").Code)
		assert.Equal(t, http.StatusForbidden, do(f.router, http.MethodPost, "/owners/1/verify", f.token(jwt.ScopeManage), "").Code)
		assert.Equal(t, http.StatusCreated, do(f.router, http.MethodGet, "/owners/1", f.token(jwt.ScopeManage), "").Code)
		assert.Equal(t, http.StatusForbidden, do(f.router, http.MethodGet, "/owners/1", f.token(), "").Code)
		assert.Equal(t, http.StatusNoContent, do(f.router, http.MethodDelete, "/owners/1", both, "").Code)
		assert.Equal(t, http.StatusCreated, do(f.router, http.MethodPost, "/owners/1/verify", both, "").Code)
	})

	t.Run("SharedEnforcer", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"), config.WithoutWatch())
		require.NoError(t, err)
		enforcer, err := NewEnforcer()
		require.NoError(t, err)
		ro := NewRouter(Config{Config: cfg, UUID: staticID("cid"), Enforcer: enforcer})
		ro.Scope(jwt.ScopeManage).GET("/owners/:owner", func(*Request) (any, error) { return created{}, nil })

		ok, err := enforcer.Enforce(jwt.ScopeManage, "/owners/:owner", http.MethodGet)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NoContent", func(t *testing.T) {
		f := newFixture(t, "app: {}")
		f.router.DELETE("/owners/:owner", func(*Request) (any, error) { return nil, nil })

		rec := do(f.router, http.MethodDelete, "/owners/1", f.token(), "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("ErrorMapping", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantFields map[string]any
		}{
			{name: "NotFound", err: goerror.NewNotFound("no token"), wantStatus: http.StatusNotFound},
			{name: "Conflict", err: goerror.NewConflict("exists"), wantStatus: http.StatusConflict},
			{name: "Unclassified", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
			{
				name:       "Validation",
				err:        goerror.NewInvalidInput(validator.V10ValidationError{"code": "bad"}),
				wantStatus: http.StatusUnprocessableEntity,
				wantFields: map[string]any{"code": "bad"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t, "app: {}")
				f.router.GET("/fail", func(*Request) (any, error) { return nil, tt.err })

				rec := do(f.router, http.MethodGet, "/fail", f.token(), "")

				assert.Equal(t, tt.wantStatus, rec.Code)
				if tt.wantFields != nil {
					assert.Equal(t, tt.wantFields, decode(t, rec)["error"])
				}
			})
		}
	})

	t.Run("BadParamAndBody", func(t *testing.T) {
		f := newFixture(t, "app: {}")
		f.router.POST("/owners/:owner/verify", func(r *Request) (any, error) {
			if _, err := r.GetParamInt64("owner"); err != nil {
				return nil, err
			}
			var body struct{ Code string }
			return nil, r.DecodeBody(&body)
		})

		rec := do(f.router, http.MethodPost, "/owners/abc/verify", f.token(), `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(f.router, http.MethodPost, "/owners/1/verify", f.token(), `{"unknown":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		f := newFixture(t, "app: {}")
		f.router.GET("/panic", func(*Request) (any, error) { panic("boom") })

		rec := do(f.router, http.MethodGet, "/panic", f.token(), "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Maintenance", func(t *testing.T) {
		f := newFixture(t, "app:\n  maintenance:\n    endpoints: [\"/blocked\"]\n")
		f.router.GET("/blocked", func(*Request) (any, error) { return created{}, nil })
		f.router.GET("/open", func(*Request) (any, error) { return created{}, nil })

		assert.Equal(t, http.StatusServiceUnavailable, do(f.router, http.MethodGet, "/blocked", f.token(), "").Code)
		assert.Equal(t, http.StatusCreated, do(f.router, http.MethodGet, "/open", f.token(), "").Code)
	})

	t.Run("MaintenanceEverywhere", func(t *testing.T) {
		f := newFixture(t, "app:\n  maintenance:\n    enabled: true\n")
		f.router.GET("/open", func(*Request) (any, error) { return created{}, nil })

		assert.Equal(t, http.StatusServiceUnavailable, do(f.router, http.MethodGet, "/open", f.token(), "").Code)
		assert.Equal(t, http.StatusOK, do(f.router, http.MethodGet, "/health", "", "").Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t, "app: {}")

		rec := do(f.router, http.MethodGet, "/missing", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
