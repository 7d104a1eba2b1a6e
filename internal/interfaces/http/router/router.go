package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a set of routes on an API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc)
}

// Router mounts domain groups under /api/<version> and applies the admin
// guard to the routes declared as mutating.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	guard      gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAdminGuard sets the middleware placed in front of guarded routes.
// Without it guarded routes are open.
func WithAdminGuard(guard gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.guard = guard
	}
}

// NewRouter creates a Router on engine, version v1 unless overridden
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every registrar
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api, r.guard)
	}
}

// DomainGroup collects the routes of one area under a shared prefix
type DomainGroup struct {
	name   string
	prefix string
	routes []route
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
	guarded bool
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// GET adds an open read route
func (dg *DomainGroup) GET(path string, h gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, path, h, false)
}

// POST adds a guarded route
func (dg *DomainGroup) POST(path string, h gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, path, h, true)
}

// DELETE adds a guarded route
func (dg *DomainGroup) DELETE(path string, h gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodDelete, path, h, true)
}

func (dg *DomainGroup) add(method, path string, h gin.HandlerFunc, guarded bool) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handler: h, guarded: guarded})
	return dg
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	group := rg.Group(dg.prefix)
	for _, rt := range dg.routes {
		if rt.guarded && guard != nil {
			group.Handle(rt.method, rt.path, guard, rt.handler)
			continue
		}
		group.Handle(rt.method, rt.path, rt.handler)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Guarded lists "METHOD path" for every guarded route of the group
func (dg *DomainGroup) Guarded() []string {
	var out []string
	for _, rt := range dg.routes {
		if rt.guarded {
			out = append(out, rt.method+" "+dg.prefix+rt.path)
		}
	}
	return out
}
