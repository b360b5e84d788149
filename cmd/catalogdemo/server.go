package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mvparakhin/multiindex/multiindex"
)

// catalogServer holds the router and the one container instance the demo
// runs over.
type catalogServer struct {
	router  *mux.Router
	catalog *multiindex.MultiIndex[string, catalogItem]
}

func newCatalogServer() *catalogServer {
	s := &catalogServer{
		router:  mux.NewRouter(),
		catalog: newCatalog(),
	}
	s.routes()
	s.router.Use(requestLoggerMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("WARN: No route found for %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})
	return s
}

func (s *catalogServer) routes() {
	s.router.HandleFunc("/items", s.handleInsert).Methods("POST")
	s.router.HandleFunc("/items", s.handleFindByCategory).Methods("GET")
	s.router.HandleFunc("/items/{id}", s.handleGetByID).Methods("GET")
	s.router.HandleFunc("/items/{id}", s.handleUpdateByID).Methods("PATCH")
	s.router.HandleFunc("/items/{id}", s.handleDeleteByID).Methods("DELETE")
	s.router.HandleFunc("/compact", s.handleCompact).Methods("POST")
	s.router.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
}

func (s *catalogServer) Router() http.Handler { return s.router }

// requestLoggerMiddleware logs the method, URL path, and duration for every
// request, the same wrapper the demo's inspiration wraps every route with.
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("INFO: %s %s took %s", r.Method, r.URL.Path, time.Since(start))
	})
}
