package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDBError translates a database failure into the nearest taxonomy
// category. Raw driver errors are logged, never returned to the caller.
func writeDBError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint"):
		writeError(w, http.StatusConflict, "resource already exists")
	case strings.Contains(msg, "violates foreign key constraint") || strings.Contains(msg, "FOREIGN KEY constraint"):
		writeError(w, http.StatusBadRequest, "referenced resource does not exist or is still in use")
	case strings.Contains(msg, "violates check constraint") || strings.Contains(msg, "CHECK constraint"):
		writeError(w, http.StatusBadRequest, "value out of allowed range")
	default:
		logrus.WithError(err).Error("database error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
