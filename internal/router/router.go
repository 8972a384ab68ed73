package router

import (
	"io/fs"
	"net/http"
	"slices"
	"strings"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Router is an http.ServeMux with per-group middleware chains. Groups share
// the parent's mux, so routes registered on a group are served by the root.
type Router struct {
	mux      *http.ServeMux
	chain    []Middleware
	notFound *http.Handler
}

// New creates a Router. The given middleware wraps every route registered on
// it and on its groups.
func New(middleware ...Middleware) *Router {
	var notFound http.Handler
	return &Router{
		mux:      http.NewServeMux(),
		chain:    middleware,
		notFound: &notFound,
	}
}

// ServeHTTP dispatches to the matching route, or to the NotFound handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if *r.notFound != nil {
		if _, pattern := r.mux.Handler(req); pattern == "" {
			(*r.notFound).ServeHTTP(w, req)
			return
		}
	}
	r.mux.ServeHTTP(w, req)
}

// NotFound sets the handler for requests no route matches. It runs behind
// the router's middleware chain.
func (r *Router) NotFound(handler http.HandlerFunc) {
	h := r.wrap(handler, nil)
	*r.notFound = h
}

// Get registers a GET route. ServeMux also answers HEAD for it.
func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, handler, middleware...)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, handler, middleware...)
}

// Handle registers handler for method and pattern.
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) {
	r.mux.Handle(method+" "+pattern, r.wrap(handler, middleware))
}

// wrap builds the chain so middleware runs in the order it was given,
// router middleware first.
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	combined := append(slices.Clone(r.chain), middleware...)
	for _, m := range slices.Backward(combined) {
		handler = m(handler)
	}
	return handler
}

// Group returns a router that shares this router's routes and adds
// middleware to everything registered through it.
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:      r.mux,
		chain:    append(slices.Clone(r.chain), middleware...),
		notFound: r.notFound,
	}
}

// Static serves fsys under prefix, e.g. Static("/static", assets).
func (r *Router) Static(prefix string, fsys fs.FS) {
	prefix = strings.TrimSuffix(prefix, "/")
	handler := http.StripPrefix(prefix, http.FileServerFS(fsys))
	r.mux.Handle("GET "+prefix+"/{file...}", r.wrap(handler, nil))
}
