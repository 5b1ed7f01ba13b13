package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gubarz/virgil/internal/parser"
	"github.com/gubarz/virgil/internal/walkthrough"
)

// navigationResponse is the flattened step order plus, per position, the
// positions of the step's parent and siblings
type navigationResponse struct {
	Order      []int                  `json:"order"`
	Depths     []int                  `json:"depths"`
	Navigation []walkthrough.NavEntry `json:"navigation"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		bodyError(w, err)
		return
	}

	res := parser.Parse(string(data), parser.Options{GitState: s.opts.GitState})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	wt, ok := decodeWalkthrough(w, r)
	if !ok {
		return
	}

	warnings := walkthrough.Validate(wt, walkthrough.ValidateOptions{WorkspaceRemote: s.opts.WorkspaceRemote})
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	wt, ok := decodeWalkthrough(w, r)
	if !ok {
		return
	}

	forest := walkthrough.BuildTree(wt.Steps)
	flat := walkthrough.Flatten(forest)
	nav := walkthrough.BuildNavigationMap(forest, flat)

	order := make([]int, len(flat))
	for i, step := range flat {
		order[i] = step.ID
	}
	writeJSON(w, http.StatusOK, navigationResponse{
		Order:      order,
		Depths:     walkthrough.Depths(nav),
		Navigation: nav,
	})
}

func decodeWalkthrough(w http.ResponseWriter, r *http.Request) (*walkthrough.Walkthrough, bool) {
	wt, err := walkthrough.Decode(r.Body)
	if err != nil {
		bodyError(w, err)
		return nil, false
	}
	return wt, true
}

func bodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
