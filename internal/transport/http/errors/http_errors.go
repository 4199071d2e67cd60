package errors

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteRateLimited answers 429 with the JSON payload and mirrors the retry
// hint into the Retry-After header for clients that only read headers.
func WriteRateLimited(w http.ResponseWriter, e RateLimitError) {
	if e.RetryAfterSec > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(e.RetryAfterSec, 10))
	}
	Write(w, http.StatusTooManyRequests, e)
}
