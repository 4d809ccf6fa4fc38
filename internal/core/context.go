package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "audit_ip"
	ctxKeyUserAgent contextKey = "audit_ua"
)

// ContextWithClient records the caller's address and User-Agent for the
// audit log. Empty values are left unset.
func ContextWithClient(ctx context.Context, ip, ua string) context.Context {
	if ip != "" {
		ctx = context.WithValue(ctx, ctxKeyIPAddress, ip)
	}
	if ua != "" {
		ctx = context.WithValue(ctx, ctxKeyUserAgent, ua)
	}
	return ctx
}

// ClientFromContext returns what ContextWithClient stored, or empty strings.
func ClientFromContext(ctx context.Context) (ip, ua string) {
	ip, _ = ctx.Value(ctxKeyIPAddress).(string)
	ua, _ = ctx.Value(ctxKeyUserAgent).(string)
	return ip, ua
}
