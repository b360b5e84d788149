package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// errorResponse mirrors the flat error shape: a short error class, a
// human-readable message, and the status code repeated in the body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleInsert decodes a catalogItem body, assigns it a fresh ID, and
// emplaces it. Responds 201 with the assigned ID, or 500 if a unique
// category constraint ever rejected it (it never does here — category is
// not unique — but the check stays because Emplace can fail for other
// policies wired onto this same handler in principle).
func (s *catalogServer) handleInsert(w http.ResponseWriter, r *http.Request) {
	var item catalogItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		log.Printf("ERROR: decoding insert body failed: %v", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := newItemID()
	h, ok := s.catalog.Emplace(id, item)
	if !ok {
		log.Printf("ERROR: emplace rejected for generated id %s", id)
		writeJSONError(w, http.StatusInternalServerError, "insert failed")
		return
	}

	log.Printf("INFO: inserted item %s in category %q", id, item.Category)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, catalogRecord{ID: h.Key(), Name: item.Name, Category: item.Category, Price: item.Price})
}

// handleGetByID returns the live record for the path's {id}, 404 if absent
// or tombstoned.
func (s *catalogServer) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h, ok := s.catalog.Find(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no item with that id")
		return
	}
	p := h.Payload()
	writeJSON(w, catalogRecord{ID: id, Name: p.Name, Category: p.Category, Price: p.Price})
}

// handleFindByCategory lists every live item in the category named by the
// ?category= query parameter, via the category secondary's view.
func (s *catalogServer) handleFindByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSONError(w, http.StatusBadRequest, "category query parameter is required")
		return
	}
	view, ok := s.catalog.ViewByTag("category")
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "category index missing")
		return
	}
	handles := view.EqualRange(category)
	out := make([]catalogRecord, 0, len(handles))
	for _, h := range handles {
		p := h.Payload()
		out = append(out, catalogRecord{ID: h.Key(), Name: p.Name, Category: p.Category, Price: p.Price})
	}
	log.Printf("INFO: found %d items in category %q", len(out), category)
	writeJSON(w, out)
}

// handleUpdateByID applies a partial update (any field present and non-null
// in the body overwrites the stored field, even with an empty value) via Modify, so category changes are
// reflected in the secondary.
func (s *catalogServer) handleUpdateByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h, ok := s.catalog.Find(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no item with that id")
		return
	}

	var patch struct {
		Name     *string  `json:"name"`
		Category *string  `json:"category"`
		Price    *float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Printf("ERROR: decoding update body failed: %v", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok = s.catalog.Modify(h, func(p *catalogItem) {
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
	})
	if !ok {
		writeJSONError(w, http.StatusConflict, "update rejected by an index constraint")
		return
	}

	log.Printf("INFO: updated item %s", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteByID tombstones the record for {id}; it stays physically
// present until the next Compact.
func (s *catalogServer) handleDeleteByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if n := s.catalog.EraseKey(id); n == 0 {
		writeJSONError(w, http.StatusNotFound, "no item with that id")
		return
	}
	log.Printf("INFO: deleted item %s", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleCompact forces a physical reclaim of every tombstoned item.
func (s *catalogServer) handleCompact(w http.ResponseWriter, r *http.Request) {
	before := s.catalog.PhysicalSize()
	s.catalog.Compact()
	after := s.catalog.PhysicalSize()
	log.Printf("INFO: compact reclaimed %d tombstoned items", before-after)
	writeJSON(w, map[string]int{"reclaimed": before - after, "live": s.catalog.Size()})
}
