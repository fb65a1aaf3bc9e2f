package api

import (
	"encoding/json"
	"net/http"
)

// Client-facing error strings, kept compatible with the original
// Stockfighter server.
const (
	msgUnknownPath    = "Unknown path"
	msgUnknownVenue   = "Unknown venue"
	msgUnknownSymbol  = "Venue is known but symbol is not"
	msgBadJSON        = "Failed to parse incoming JSON"
	msgURLMismatch    = "Venue or symbol in URL did not match that in POST"
	msgMissingField   = "Missing key or unacceptable value in POST"
	msgUnknownOrder   = "Unknown order ID"
	msgBadOrderID     = "Couldn't parse order ID"
	msgAuthFailure    = "Unknown account or wrong API key"
	msgNoAuth         = "No API key received (auth is enabled on this server)"
	msgVenueNotUp     = "Venue not up (create it by using it)"
	msgBookLimit      = "Too many books exist"
	msgBadBookName    = "Bad venue or symbol (should be alpha_numeric and sane length)"
	msgBadAccountName = "Bad account name (should be alpha_numeric and sane length)"
	msgBadDirection   = "Bad direction (should be buy or sell, lowercase)"
	msgBadOrderType   = "Bad (unknown) orderType"
	msgBadPrice       = "Bad (negative or too large) price"
	msgBadQty         = "Bad (non-positive or too large) qty"
	msgTooManyAccts   = "Too many accounts have been created"
	msgDisabled       = "Disabled or not enabled. (See command line options)"
)

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{OK: false, Error: msg})
}
