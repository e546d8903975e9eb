package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/ecole-console/internal/core"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
)

// WithRequestMetadata adds IP and User-Agent to ctx for the import history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
