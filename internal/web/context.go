package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/skidrates/internal/core"
)

// withRequestMetadata adds the client IP and User-Agent to ctx for the
// audit log. RemoteAddr has already been resolved by TrustedRealIP.
func withRequestMetadata(r *http.Request) context.Context {
	return core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
}
