package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
)

// HandleExport streams a place's samples as a classifier-ready CSV
// attachment. The artifact is named by place id so the downstream training
// step binds unambiguously to its input.
//
// The CSV is built fully before any byte is written, so a failure mid-export
// never produces a partial download.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	placeID, err := strconv.ParseInt(r.PathValue("place_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "place_id must be an integer")
		return
	}

	var buf bytes.Buffer
	if err := s.store.ExportPlace(r.Context(), placeID, &buf); err != nil {
		s.logger.Errorw("Export failed", "place_id", placeID, "error", err)
		writeTaxonomyError(w, err)
		return
	}

	filename := fmt.Sprintf("place_%d.csv", placeID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())
}
