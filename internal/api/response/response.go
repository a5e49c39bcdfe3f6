// Package response writes JSON bodies and the {error, details} error envelope.
package response

import (
	"encoding/json"
	"log"
	"net/http"
	"path"
)

// ErrorResponse is the body of every non-2xx response. Details holds a string,
// or a map of field or CSV line to message when several problems are reported.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends data as JSON with the given status code.
// A nil data writes only the status, which is what 204 No Content needs.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondCreated sends 201 with a Location header pointing at the new
// resource, which lives at id below the collection path of r.
//
//	POST /api/user/{uuid}/holding -> Location: /api/user/{uuid}/holding/{id}
func RespondCreated(w http.ResponseWriter, r *http.Request, id string, data any) {
	if id != "" {
		w.Header().Set("Location", path.Join(r.URL.Path, id))
	}
	RespondJSON(w, http.StatusCreated, data)
}

// RespondError sends the error envelope.
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusBadRequest, "import rejected", result.Errors)
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
