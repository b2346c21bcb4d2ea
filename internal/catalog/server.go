package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/sirupsen/logrus"
)

// DB is the json-server style document served by Server.
type DB struct {
	Products []domain.Product `json:"products"`
	Stock    []domain.Stock   `json:"stock"`
}

func LoadDB(path string) (DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DB{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	var db DB
	if err := json.Unmarshal(data, &db); err != nil {
		return DB{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return db, nil
}

// Server is a read-only stand-in for the storefront API, for local runs and tests.
type Server struct {
	router   *mux.Router
	log      logrus.FieldLogger
	products map[int64]domain.Product
	stock    map[int64]domain.Stock
	order    []int64
}

func NewServer(db DB, log logrus.FieldLogger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		log:      log,
		products: make(map[int64]domain.Product, len(db.Products)),
		stock:    make(map[int64]domain.Stock, len(db.Stock)),
	}

	for _, p := range db.Products {
		p.Amount = 0
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	for _, st := range db.Stock {
		s.stock[st.ID] = st
	}

	s.router.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	s.router.HandleFunc("/products/{id:[0-9]+}", s.getProduct).Methods(http.MethodGet)
	s.router.HandleFunc("/stock/{id:[0-9]+}", s.getStock).Methods(http.MethodGet)
	s.router.Use(s.logRequests)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, ok := s.products[id]
	if !ok {
		s.writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}

	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) getStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, ok := s.stock[id]
	if !ok {
		s.writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}

	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("failed to write response")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}
