package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"coinquest/pkg/requestcontext"
)

// Header carries the request ID in and out of the service.
const Header = "X-Request-ID"

const maxInboundLen = 128

// Middleware reuses a caller-supplied request ID when it is short enough,
// otherwise generates one, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" || len(reqID) > maxInboundLen {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), reqID)))
	})
}
