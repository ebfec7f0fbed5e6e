package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Every response carries a status field the frontend branches on; transport
// status codes are advisory. Success envelopes embed their payload, failure
// envelopes carry a single human-readable reason.

type failedResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, httpStatus int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("server.respond.encode_error", "error", err)
	}
}

func writeFailed(w http.ResponseWriter, httpStatus int, reason string) {
	writeJSON(w, httpStatus, failedResponse{Status: "failed", Error: reason})
}
