package docs

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

//go:embed openapi.json
var spec []byte

// Spec serves the OpenAPI document.
func Spec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// SwaggerUI serves the Swagger UI pointed at Spec.
func SwaggerUI() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL("/api/openapi.json"))
}
