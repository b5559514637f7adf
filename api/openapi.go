package api

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var apiDocument []byte

// GetSwagger loads the OpenAPI document the /v1 routes are validated against.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	swagger, err := loader.LoadFromData(apiDocument)
	if err != nil {
		return nil, fmt.Errorf("error loading api document: %w", err)
	}

	// Requests are matched on path alone, whatever host serves them.
	swagger.Servers = nil

	return swagger, nil
}

func mustGetSwagger() *openapi3.T {
	swagger, err := GetSwagger()
	if err != nil {
		panic(err)
	}
	return swagger
}
