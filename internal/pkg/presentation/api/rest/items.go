package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/application/ontology"
	"github.com/diwise/item-drive/internal/pkg/presentation/api/rest/auth"
	driveerrors "github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("item-drive/api/items")

// NewQueryItemsHandler handles GET requests for items. The optional query parameter
// holds a JSON encoded array of fact queries.
func NewQueryItemsHandler(app itemdrive.ItemDrive) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "query-items")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, _ := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		var queries []facts.Query

		if q := r.URL.Query().Get("query"); q != "" {
			err = json.Unmarshal([]byte(q), &queries)
			if err != nil {
				driveerrors.ReportNewBadRequestData(w, fmt.Sprintf("unable to decode query: %s", err.Error()), traceID)
				return
			}

			if queries == nil {
				queries = []facts.Query{}
			}
		}

		var result []items.Item
		result, err = app.FetchItems(ctx, queries)
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

func NewRetrieveItemHandler(app itemdrive.ItemDrive) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "retrieve-item")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, _ := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		itemID := pathParam(r, "itemId")
		span.SetAttributes(attribute.String("item-id", itemID))

		var item *items.Item
		item, err = app.FetchItem(ctx, itemID)
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		if item == nil {
			err = driveerrors.NewNotFoundError(fmt.Sprintf("item %s not found", itemID))
			driveerrors.ReportNotFoundError(w, err.Error(), traceID)
			return
		}

		writeJSON(w, http.StatusOK, item)
	})
}

// NewCreateItemsHandler handles POST requests with either a single partial item or an
// array of partial items
func NewCreateItemsHandler(app itemdrive.ItemDrive, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "create-items")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		var partials []items.PartialItem
		partials, err = decodePartialItems(r.Body)
		if err != nil {
			driveerrors.ReportNewInvalidRequest(w, err.Error(), traceID)
			return
		}

		err = authenticator.CheckAccess(ctx, r, typesOf(partials))
		if err != nil {
			driveerrors.ReportUnauthorizedRequest(w, err.Error(), traceID)
			return
		}

		var result []items.Item
		result, err = app.InsertItems(ctx, partials)
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		log.Info("items created", "count", len(result))

		writeJSON(w, http.StatusCreated, result)
	})
}

// NewCheckItemsHandler validates partial items against the ontology without storing them
func NewCheckItemsHandler(app itemdrive.ItemDrive) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "check-items")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, _ := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		var partials []items.PartialItem
		partials, err = decodePartialItems(r.Body)
		if err != nil {
			driveerrors.ReportNewInvalidRequest(w, err.Error(), traceID)
			return
		}

		now := time.Now()

		for _, p := range partials {
			var item items.Item
			item, err = items.MakeItem(p, now)
			if err != nil {
				reportError(w, err, traceID)
				return
			}

			err = app.CheckItem(ctx, item)
			if err != nil {
				reportError(w, err, traceID)
				return
			}
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewCheckStoredItemHandler(app itemdrive.ItemDrive) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "check-item")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, _ := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		itemID := pathParam(r, "itemId")
		span.SetAttributes(attribute.String("item-id", itemID))

		var item *items.Item
		item, err = app.FetchItem(ctx, itemID)
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		if item == nil {
			err = driveerrors.NewNotFoundError(fmt.Sprintf("item %s not found", itemID))
			driveerrors.ReportNotFoundError(w, err.Error(), traceID)
			return
		}

		err = app.CheckItem(ctx, *item)
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewRetrieveFactHandler(app itemdrive.ItemDrive) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "retrieve-fact")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, _ := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		var f facts.Fact
		f, err = app.FetchFact(ctx, pathParam(r, "factId"))
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		writeJSON(w, http.StatusOK, f)
	})
}

func NewRetrievePropertiesOfTypeHandler(app itemdrive.ItemDrive) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "retrieve-properties")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		traceID, ctx, _ := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

		var properties []items.Item
		properties, err = app.PropertiesOfType(ctx, pathParam(r, "typeId"))
		if err != nil {
			reportError(w, err, traceID)
			return
		}

		writeJSON(w, http.StatusOK, properties)
	})
}

func reportError(w http.ResponseWriter, err error, traceID string) {
	switch {
	case errors.Is(err, driveerrors.ErrValidation), errors.Is(err, driveerrors.ErrBadRequest):
		driveerrors.ReportNewBadRequestData(w, err.Error(), traceID)
	case errors.Is(err, driveerrors.ErrUnauthorized):
		driveerrors.ReportUnauthorizedRequest(w, err.Error(), traceID)
	case errors.Is(err, driveerrors.ErrNotFound):
		driveerrors.ReportNotFoundError(w, err.Error(), traceID)
	case errors.Is(err, driveerrors.ErrAlreadyExists):
		driveerrors.ReportNewAlreadyExistsError(w, err.Error(), traceID)
	case errors.Is(err, driveerrors.ErrSchema):
		reason, _ := driveerrors.SchemaReasonOf(err)
		driveerrors.ReportSchemaViolation(w, reason, err.Error(), traceID)
	default:
		driveerrors.ReportNewInternalError(w, err.Error(), traceID)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		driveerrors.ReportNewInternalError(w, fmt.Sprintf("failed to marshal response: %s", err.Error()), "")
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}

// pathParam returns the unescaped value of a route parameter. Item ids are often IRIs
// and arrive percent encoded.
func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func decodePartialItems(body io.Reader) ([]items.PartialItem, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("unable to read request body: %w", err)
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}

	partials := []items.PartialItem{}

	if b[0] == '[' {
		err = json.Unmarshal(b, &partials)
	} else {
		p := items.PartialItem{}
		err = json.Unmarshal(b, &p)
		partials = append(partials, p)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to decode request payload: %w", err)
	}

	return partials, nil
}

func typesOf(partials []items.PartialItem) []string {
	types := []string{}
	for _, p := range partials {
		for _, f := range p.Facts {
			if f.Property != ontology.PropertyType {
				continue
			}
			if id, ok := f.Value.Reference(); ok {
				types = append(types, id)
			}
		}
	}
	return types
}
