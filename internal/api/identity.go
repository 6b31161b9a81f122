package api

import (
	"net/http"
	"strconv"
)

// userIDHeader carries the authenticated caller's ID, placed by the
// auth layer in front of this service. Authentication itself is outside
// this service's responsibility.
const userIDHeader = "X-User-ID"

// callerID extracts the authenticated user ID from the request.
// Writes a 401 and returns false when it is missing or malformed.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return 0, false
	}

	return id, true
}
