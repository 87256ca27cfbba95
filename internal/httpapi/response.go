// Package httpapi holds the response envelope and request binding shared by
// every HTTP handler.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is negotiated through the Accept header.
const ContentTypeMsgpack = "application/msgpack"

// Envelope wraps every successful response body.
type Envelope struct {
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata accompanies every envelope.
type Metadata struct {
	Timestamp string `json:"timestamp"`
}

// ErrorBody is written for every failed request.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

// WantsMsgpack reports whether the client asked for a msgpack body.
func WantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), ContentTypeMsgpack)
}

// WriteData writes data inside the standard envelope.
func WriteData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	Write(w, r, status, Envelope{
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now().Format(time.RFC3339)},
	})
}

// WriteError writes an error body with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	Write(w, r, status, ErrorBody{Error: message})
}

// Write encodes v as msgpack when requested and as JSON otherwise.
func Write(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	log := zerolog.Ctx(r.Context())

	if WantsMsgpack(r) {
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(v); err != nil {
			log.Error().Err(err).Msg("Failed to encode msgpack response")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
