package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"
	maxCorrelationIDLen = 128
)

// CorrelationID adopts the caller's X-Correlation-Id when it is usable and
// mints one otherwise. The id is echoed on the response and forwarded to the
// backend through the request context.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if !validCorrelationID(cid) {
			cid = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, cid)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), cid)))
	})
}

func validCorrelationID(cid string) bool {
	if cid == "" || len(cid) > maxCorrelationIDLen {
		return false
	}
	for i := 0; i < len(cid); i++ {
		if c := cid[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
