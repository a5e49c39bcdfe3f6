package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/ndewijer/Income-Clarity-Backend/internal/config"
)

// NewCORS builds the CORS handler for the web client. Location and
// X-Request-Id are exposed so the client can follow creates and report
// failing requests.
func NewCORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})
}
