package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a set of routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// HandlerFunc adapts a plain function to RouteRegistrar
type HandlerFunc func(rg *gin.RouterGroup)

// RegisterRoutes implements RouteRegistrar
func (f HandlerFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

// Router collects registrars and mounts them under /api/<version> on Setup
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the base path
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithGroupMiddleware adds middleware that wraps API routes but not the rest of the engine
func WithGroupMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.middleware = append(r.middleware, middleware...) }
}

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

// BasePath returns the versioned API prefix, e.g. "/api/v1"
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every queued registrar. Call it once, after all Register calls.
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath(), r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup is the set of routes for one resource, mounted under a shared prefix
type DomainGroup struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []groupRoute
}

type groupRoute struct {
	method   string
	path     string
	handlers gin.HandlersChain
}

// NewDomainGroup creates a group whose routes run middleware before their own handlers
func NewDomainGroup(prefix string, middleware ...gin.HandlerFunc) *DomainGroup {
	return &DomainGroup{prefix: prefix, middleware: middleware}
}

// Handle adds a route relative to the group prefix
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, groupRoute{method: method, path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}
