package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/presentation/api/rest/auth"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

func RegisterHandlers(ctx context.Context, r chi.Router, policies io.Reader, token string, app itemdrive.ItemDrive) error {

	authenticator, err := auth.NewAuthenticator(ctx, policies, token)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Group(func(r chi.Router) {
		r.Use(
			Logger(logging.GetFromContext(ctx)),
			RequiredContentTypes([]string{"application/json", "application/ld+json"}),
		)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", NewQueryItemsHandler(app))
			r.Post("/", NewCreateItemsHandler(app, authenticator))
			r.Post("/check", NewCheckItemsHandler(app))

			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", NewRetrieveItemHandler(app))
				r.Get("/check", NewCheckStoredItemHandler(app))
			})
		})

		r.Get("/facts/{factId}", NewRetrieveFactHandler(app))
		r.Get("/types/{typeId}/properties", NewRetrievePropertiesOfTypeHandler(app))
	})

	return nil
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequiredContentTypes(validTypes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			isValidContentType := true

			if len(contentType) > 0 {
				isValidContentType = false

				for _, t := range validTypes {
					if strings.HasPrefix(contentType, t) {
						isValidContentType = true
						break
					}
				}
			}

			if isValidContentType {
				next.ServeHTTP(w, r)
			} else {
				http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			}
		})
	}
}
