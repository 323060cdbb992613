// Package responseformat writes HTTP responses as JSON or MessagePack,
// chosen by the request's format query parameter.
package responseformat

import (
	"encoding/json"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a response encoding
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
)

// Content types for each format
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgPack = "application/x-msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Requested returns the format a request asks for. JSON is the default;
// MessagePack is used when format=msgpack is given.
func Requested(req *http.Request) Format {
	if req.URL.Query().Get("format") == string(MsgPack) {
		return MsgPack
	}
	return JSON
}

// WriteResponse encodes data in the requested format with the given status
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, status int, data any) error {
	if Requested(req) == MsgPack {
		return f.writeMsgPack(w, status, data)
	}
	return f.writeJSON(w, status, data)
}

// WriteError writes {"error": msg} in the requested format
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, msg string) error {
	return f.WriteResponse(w, req, status, map[string]string{"error": msg})
}

func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", ContentTypeMsgPack)
	w.WriteHeader(status)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	encoder.SetSortMapKeys(true)
	return encoder.Encode(data)
}
