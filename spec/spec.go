// Package spec embeds the OpenAPI specification for the URL shortener API.
// It is served as-is at /openapi.yaml and rendered by the Scalar UI at /.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
