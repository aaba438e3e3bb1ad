package server

import (
	"net/http"
	"strings"
)

// BasicRouter is a [Router] over [http.ServeMux] method patterns.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path. Other methods on path get 405 from the mux.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(strings.ToUpper(method)+" "+path, r.Apply(handler))
}

// Handler registers handler for GET on each of its routes.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(http.MethodGet+" "+route, wrapped)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler so that the first registered middleware runs outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	return handler
}
