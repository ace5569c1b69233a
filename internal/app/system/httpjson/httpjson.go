// Package httpjson holds the JSON request/response helpers shared by
// all API handlers: a decode helper with size limiting, a response
// writer, and the {"error": ...} envelope.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; the API only carries small JSON
// documents.
const maxBodyBytes = 1 << 20

var validate = validator.New()

// Decode reads the request body into dst and runs struct validation.
func Decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// Write sends v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error sends the {"error": msg} envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]string{"error": msg})
}

// BadRequest reports a client error, exposing validation detail but not
// internal state.
func BadRequest(w http.ResponseWriter, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		Error(w, http.StatusBadRequest, verr.Error())
		return
	}
	Error(w, http.StatusBadRequest, err.Error())
}

// ServerError logs the real error and sends a generic message so no
// internal detail leaks to clients.
func ServerError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	Error(w, http.StatusInternalServerError, "Server error")
}

// NotFound sends the standard 404 envelope.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
