package gen

// Regenerate after editing spec/openapi.yaml. Requires the oapi-codegen v2 binary:
//
//	go install github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1
//
//go:generate oapi-codegen --config=cfg.yaml ../../../spec/openapi.yaml
