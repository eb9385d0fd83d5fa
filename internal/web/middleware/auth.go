package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/flightparser/internal/logging"
)

// APIKeyHeader carries the client key.
const APIKeyHeader = "X-API-Key"

// APIKey returns middleware that requires a valid X-API-Key header.
// With an empty key list every request is rejected.
func APIKey(keys []string) func(http.Handler) http.Handler {
	accepted := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			accepted = append(accepted, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				logging.FromContext(r.Context()).Warn("auth: missing API key", "path", r.URL.Path)
				denied(w, http.StatusUnauthorized, "missing API key", "AUTH001")
				return
			}
			if !keyAccepted([]byte(key), accepted) {
				logging.FromContext(r.Context()).Warn("auth: invalid API key", "path", r.URL.Path)
				denied(w, http.StatusForbidden, "invalid API key", "AUTH002")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// keyAccepted compares against every key in constant time per key.
func keyAccepted(key []byte, accepted [][]byte) bool {
	ok := 0
	for _, k := range accepted {
		ok |= subtle.ConstantTimeCompare(key, k)
	}
	return ok == 1
}

func denied(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"action":  "Send a configured key in the " + APIKeyHeader + " header",
		"code":    code,
	})
}
