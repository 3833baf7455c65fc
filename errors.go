package main

import (
	"errors"
	"net/http"
)

// Store-level outcomes the handlers translate into 400 responses.
var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrAlreadyFavorited = errors.New("already in favorites")
)

// writeMessage writes the standard {"success":…,"message":…} envelope.
func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": success,
		"message": message,
	})
}

// writeDBError reports a storage failure. The raw driver error is echoed
// in the message; existing clients match on this text.
func writeDBError(w http.ResponseWriter, err error) {
	writeMessage(w, http.StatusInternalServerError, false, "Database error: "+err.Error())
}
