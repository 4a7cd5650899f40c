package handler

import (
	"net/http"

	"github.com/urlshortener/backend/spec"
)

// docsPage loads the Scalar API reference from its CDN and points it at the
// embedded OpenAPI document.
const docsPage = `<!doctype html>
<html>
  <head>
    <title>URL Shortener API</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <script id="api-reference" data-url="/openapi.yaml"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
  </body>
</html>
`

// GetDocs handles GET /, serving the interactive API reference.
func GetDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docsPage))
}

// GetOpenAPI handles GET /openapi.yaml, serving the embedded spec.
func GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
