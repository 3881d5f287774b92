package testutil

import (
	"net/http"

	id "coinquest/pkg/domain"
	"coinquest/pkg/requestcontext"
)

// WithUser attaches a non-superuser principal to the request, as the auth
// middleware would after validating a token.
func WithUser(req *http.Request, userID id.UserID) *http.Request {
	return WithPrincipal(req, requestcontext.Principal{UserID: userID})
}

// WithPrincipal attaches principal to the request context.
func WithPrincipal(req *http.Request, principal requestcontext.Principal) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), principal))
}
