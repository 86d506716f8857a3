package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Pmariak1013/GraphVisualizer/pkg/engine"
	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
	"github.com/Pmariak1013/GraphVisualizer/pkg/persistence"
)

// maxBodyBytes bounds request bodies; every body is a handful of strings.
const maxBodyBytes = 1 << 20

// registerHTTPHandlers sets up the routes of the REST API.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	// --- Graph ---
	mux.HandleFunc("GET /graph", s.handleGetGraph)
	mux.HandleFunc("GET /graph/layout", s.handleGetLayout)
	mux.HandleFunc("POST /graph/nodes", s.handleAddNode)
	mux.HandleFunc("DELETE /graph/nodes/{key}", s.handleRemoveNode)
	mux.HandleFunc("PUT /graph/nodes/{key}/color", s.handleSetColor)
	mux.HandleFunc("POST /graph/edges", s.handleAddEdge)
	mux.HandleFunc("DELETE /graph/edges", s.handleRemoveEdge)
	mux.HandleFunc("POST /graph/clear", s.handleClear)

	// --- System ---
	mux.HandleFunc("POST /system/save", s.handleSave)
	mux.HandleFunc("POST /system/save-as", s.handleSaveAs)
	mux.HandleFunc("POST /system/load", s.handleLoad)
	mux.HandleFunc("POST /system/delete", s.handleDelete)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK"})
}

// --- Graph Handlers ---

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, persistence.Encode(s.Engine.Snapshot()))
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	snap, positions := s.Engine.Layout()

	colors := make(map[string]string, len(snap.Nodes))
	for _, n := range snap.Nodes {
		colors[n] = snap.ColorOf(n)
	}
	s.writeHTTPResponse(w, http.StatusOK, LayoutResponse{Positions: positions, Colors: colors})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.Engine.AddNode(req.Key); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusCreated, StatusResponse{Status: "OK"})
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.RemoveNode(r.PathValue("key")); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK"})
}

func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	var req ColorRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.Engine.SetColor(r.PathValue("key"), req.Color); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK"})
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.Engine.AddEdge(req.A, req.B); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusCreated, StatusResponse{Status: "OK"})
}

func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.Engine.RemoveEdge(req.A, req.B); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Clear(); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK", Message: "Graph cleared"})
}

// --- System Handlers ---

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Save(); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{
		Status:  "OK",
		Message: "Graph saved",
		Path:    s.Engine.SourceName(),
	})
}

func (s *Server) handleSaveAs(w http.ResponseWriter, r *http.Request) {
	var req FileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := engine.CheckLocalName(req.Name); err != nil {
		s.writeEngineError(w, err)
		return
	}
	path, err := s.Engine.SaveAs(req.Name)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK", Message: "Graph saved", Path: path})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req FileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := engine.CheckLocalName(req.Name); err != nil {
		s.writeEngineError(w, err)
		return
	}
	if err := s.Engine.Load(req.Name); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{Status: "OK", Message: "Graph loaded"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.DeleteGraph(); err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, StatusResponse{
		Status:  "OK",
		Message: "Graph deleted",
		Path:    s.Engine.SourceName(),
	})
}

// --- HTTP Response Helpers ---

// decodeBody parses a JSON body into dst. On failure it writes a 400 and
// returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeHTTPError(w, http.StatusBadRequest, "request body is empty")
		} else {
			s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		}
		return false
	}
	return true
}

// statusFor maps an engine error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrInvalidEndpoint), errors.Is(err, engine.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, persistence.ErrMalformedRecord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, persistence.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", code, "error", err)
	}
	s.writeHTTPError(w, code, err.Error())
}

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
