package docs

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// viewerHTML is a minimal standalone viewer that renders /docs/api.json.
const viewerHTML = `<!DOCTYPE html>
<html>
<head>
  <title>API Reference</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
  <script id="api-reference" data-url="/docs/api.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>
`

// Handler serves the HTML viewer at GET /docs and the OpenAPI document at
// GET /docs/api.json. The document is rendered once at construction; the
// binder is immutable after route registration.
func Handler(b *Binder, info Info) http.Handler {
	document, err := json.Marshal(b.Document(info))
	if err != nil {
		// The document is built from static route metadata; a marshal
		// failure is a programming error.
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write([]byte(viewerHTML)); err != nil {
			slog.Debug("writing docs viewer", "error", err)
		}
	})
	mux.HandleFunc("GET /docs/api.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(document); err != nil {
			slog.Debug("writing openapi document", "error", err)
		}
	})
	return mux
}
