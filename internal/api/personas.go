package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/patrickwarner/seamlessads/internal/personas"
)

// ListPersonasHandler handles GET /personas.
func (s *Server) ListPersonasHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, http.StatusOK, map[string][]string{"personas": personas.Keys()})
	s.observe("personas", http.MethodGet, http.StatusOK, start)
}

// GetPersonaHandler handles GET /personas/{key}.
func (s *Server) GetPersonaHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "persona"

	p, err := personas.Get(mux.Vars(r)["key"])
	if errors.Is(err, personas.ErrUnknownPersona) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		s.observe(endpoint, http.MethodGet, http.StatusNotFound, start)
		return
	}
	writeJSON(w, http.StatusOK, p)
	s.observe(endpoint, http.MethodGet, http.StatusOK, start)
}
