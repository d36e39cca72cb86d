package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Response is the envelope every API endpoint answers with
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    any    `json:"user,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess sends {success:true, message, user?}. A nil user is omitted.
func RespondSuccess(w http.ResponseWriter, message string, user any, statusCode int) {
	resp := Response{Success: true, Message: message}
	if user != nil {
		resp.User = user
	}
	RespondJSON(w, resp, statusCode)
}

// RespondError sends {success:false, message} with the given status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Response{Success: false, Message: message}, statusCode)
}
