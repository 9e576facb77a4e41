package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/ardanlabs/provenance/foundation/web"
)

// corsMethods are the methods the ledger api accepts from a browser.
var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}

// Cors sets the response headers needed for Cross-Origin Resource Sharing.
// Preflight requests are answered here and never reach the handler.
func Cors(origin string) web.Middleware {
	methods := strings.Join(corsMethods, ", ")

	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Methods", methods)
			hdr.Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, Content-Length, Accept-Encoding")
			hdr.Set("Access-Control-Max-Age", "86400")
			if origin != "*" {
				hdr.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
