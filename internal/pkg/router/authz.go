package router

import (
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

// scopeModel grants a token scope (sub) one route pattern (obj) and method (act).
const scopeModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// NewEnforcer returns an in-memory enforcer over the scope model. Policies
// are added by Scoped as endpoints register.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(scopeModel)
	if err != nil {
		return nil, err
	}

	return casbin.NewEnforcer(m)
}

// Scoped registers endpoints callable only by tokens carrying its scope.
type Scoped struct {
	r     *Router
	scope string
}

// Scope returns a registrar granting every endpoint it registers to scope.
func (r *Router) Scope(scope string) *Scoped {
	return &Scoped{r: r, scope: scope}
}

// GET registers a GET endpoint granted to the scope.
func (s *Scoped) GET(path string, h Handler, mws ...Middleware) {
	s.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint granted to the scope.
func (s *Scoped) POST(path string, h Handler, mws ...Middleware) {
	s.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint granted to the scope.
func (s *Scoped) PUT(path string, h Handler, mws ...Middleware) {
	s.endpoint(http.MethodPut, path, h, mws...)
}

// DELETE registers a DELETE endpoint granted to the scope.
func (s *Scoped) DELETE(path string, h Handler, mws ...Middleware) {
	s.endpoint(http.MethodDelete, path, h, mws...)
}

func (s *Scoped) endpoint(method, path string, h Handler, mws ...Middleware) {
	// like httprouter, a bad registration panics
	if _, err := s.r.enforcer.AddPolicy(s.scope, path, method); err != nil {
		panic("router: grant " + s.scope + " " + method + " " + path + ": " + err.Error())
	}

	s.r.endpoint(method, path, h, append([]Middleware{middlewareAuthorization(s.r.enforcer)}, mws...)...)
}
