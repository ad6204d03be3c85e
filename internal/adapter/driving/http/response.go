package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/soapmock/internal/soap"
)

const (
	contentTypeXML  = "text/xml; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// writeXML writes an already-encoded XML document with the given status code.
func writeXML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", contentTypeXML)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeFault encodes f as a fault envelope. If encoding fails, a bare 500 is
// written instead.
func writeFault(w http.ResponseWriter, status int, f *soap.Fault) {
	body, err := soap.MarshalFault(f)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeXML(w, status, body)
}

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
