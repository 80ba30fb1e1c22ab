package itemdrive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/diwise/item-drive/internal/pkg/application/ontology"
	"github.com/diwise/item-drive/internal/pkg/application/subscriptions"
	"github.com/diwise/item-drive/pkg/drive/errors"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/diwise/item-drive/pkg/drive/items"
	"github.com/diwise/item-drive/pkg/drive/jsonld"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("item-drive/drive")

//go:generate moq -rm -out itemdrive_mock.go . ItemDrive

type ItemDrive interface {
	InsertItem(ctx context.Context, partial items.PartialItem) (items.Item, error)
	InsertItems(ctx context.Context, partials []items.PartialItem) ([]items.Item, error)

	FetchItem(ctx context.Context, itemID string) (*items.Item, error)
	FetchItems(ctx context.Context, queries []facts.Query) ([]items.Item, error)
	FetchFact(ctx context.Context, factID string) (facts.Fact, error)

	CheckItem(ctx context.Context, item items.Item) error
	PropertiesOfType(ctx context.Context, typeID string) ([]items.Item, error)

	Start() error
	Stop() error
}

type Option func(*itemDriveApp)

func WithNotifier(n subscriptions.Notifier) Option {
	return func(app *itemDriveApp) {
		app.notifier = n
	}
}

func WithExternalReferences(allowed bool) Option {
	return func(app *itemDriveApp) {
		app.allowExternalReferences = allowed
	}
}

// WithClock replaces the wall clock used to timestamp inserted facts
func WithClock(now func() time.Time) Option {
	return func(app *itemDriveApp) {
		app.now = now
	}
}

type itemDriveApp struct {
	source    DataSource
	notifier  subscriptions.Notifier
	validator ontology.Validator
	now       func() time.Time

	allowExternalReferences bool
}

func New(source DataSource, options ...Option) ItemDrive {
	app := &itemDriveApp{
		source: source,
		now:    time.Now,
	}

	for _, opt := range options {
		opt(app)
	}

	app.validator = ontology.NewValidator(app, ontology.WithExternalReferences(app.allowExternalReferences))

	return app
}

func (app *itemDriveApp) InsertItem(ctx context.Context, partial items.PartialItem) (items.Item, error) {
	inserted, err := app.InsertItems(ctx, []items.PartialItem{partial})
	if err != nil {
		return items.Item{}, err
	}

	return inserted[0], nil
}

// InsertItems builds every partial item with a shared timestamp and persists all of
// their facts in a single call to the data source.
func (app *itemDriveApp) InsertItems(ctx context.Context, partials []items.PartialItem) (result []items.Item, err error) {
	ctx, span := tracer.Start(ctx, "insert-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	now := app.now()
	result = make([]items.Item, 0, len(partials))
	pending := []facts.PartialFact{}

	for _, p := range partials {
		item, err := items.MakeItem(p, now)
		if err != nil {
			return nil, err
		}

		result = append(result, item)
		pending = append(pending, items.PartialFactsOf(item)...)
	}

	if _, err = app.source.InsertFacts(ctx, pending); err != nil {
		return nil, err
	}

	logger := logging.GetFromContext(ctx)
	logger.Debug("inserted items", "count", len(result), "facts", len(pending))

	if app.notifier != nil {
		for _, item := range result {
			app.notifier.ItemCreated(ctx, item)
		}
	}

	return result, nil
}

// FetchItem returns nil without an error when no facts exist for itemID
func (app *itemDriveApp) FetchItem(ctx context.Context, itemID string) (*items.Item, error) {
	fs, err := app.source.FetchFacts(ctx, []facts.Query{{ItemID: []string{itemID}}})
	if err != nil {
		return nil, err
	}

	if len(fs) == 0 {
		return nil, nil
	}

	return &items.Item{ItemID: itemID, Facts: fs}, nil
}

// FetchItems returns the items having, for every property named by the queries, at least
// one fact matching at least one of the queries naming that property. A nil slice of
// queries returns every item.
func (app *itemDriveApp) FetchItems(ctx context.Context, queries []facts.Query) (result []items.Item, err error) {
	ctx, span := tracer.Start(ctx, "fetch-items")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	itemIDs, err := app.fetchItemIDs(ctx, queries)
	if err != nil {
		return nil, err
	}

	result = make([]items.Item, 0, len(itemIDs))

	for _, itemID := range itemIDs {
		item, err := app.FetchItem(ctx, itemID)
		if err != nil {
			return nil, err
		}

		if item == nil {
			return nil, errors.NewNotFoundError(fmt.Sprintf("item %s not found", itemID))
		}

		result = append(result, *item)
	}

	return result, nil
}

func (app *itemDriveApp) fetchItemIDs(ctx context.Context, queries []facts.Query) ([]string, error) {
	if queries == nil {
		all, err := app.source.FetchFacts(ctx, nil)
		if err != nil {
			return nil, err
		}
		return distinctItemIDs(all), nil
	}

	groups := facts.GroupQueriesByProperty(queries)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("property-groups", len(groups)))

	if len(groups) == 0 {
		return []string{}, nil
	}

	var result []string

	for i, group := range groups {
		itemIDs, err := app.itemIDsMatchingGroup(ctx, group)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			result = itemIDs
		} else {
			result = intersect(result, itemIDs)
		}

		if len(result) == 0 {
			break
		}
	}

	return result, nil
}

// itemIDsMatchingGroup returns the distinct ids of the items having a fact that matches
// any of the queries in group. Every query of the group is passed to the data source
// unchanged, which means that a query naming item or fact ids widens the group rather
// than narrowing it.
func (app *itemDriveApp) itemIDsMatchingGroup(ctx context.Context, group facts.PropertyGroup) ([]string, error) {
	fs, err := app.source.FetchFacts(ctx, group.Queries)
	if err != nil {
		return nil, err
	}
	return distinctItemIDs(fs), nil
}

func (app *itemDriveApp) FetchFact(ctx context.Context, factID string) (f facts.Fact, err error) {
	ctx, span := tracer.Start(ctx, "fetch-fact")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("fact-id", factID))

	return app.source.FetchFact(ctx, factID)
}

func (app *itemDriveApp) CheckItem(ctx context.Context, item items.Item) error {
	return app.validator.CheckItem(ctx, item)
}

func (app *itemDriveApp) PropertiesOfType(ctx context.Context, typeID string) ([]items.Item, error) {
	return app.validator.PropertiesOfType(ctx, typeID)
}

func (app *itemDriveApp) Start() error {
	if app.notifier != nil {
		return app.notifier.Start()
	}

	return nil
}

func (app *itemDriveApp) Stop() error {
	if app.notifier != nil {
		return app.notifier.Stop()
	}

	return nil
}

// IngestDocument converts a JSON-LD document into items and inserts them into drive
func IngestDocument(ctx context.Context, drive ItemDrive, document io.Reader) ([]items.Item, error) {
	partials, err := jsonld.ItemsFromReader(document)
	if err != nil {
		return nil, err
	}

	return drive.InsertItems(ctx, partials)
}

func distinctItemIDs(fs []facts.Fact) []string {
	seen := map[string]struct{}{}
	result := []string{}

	for _, f := range fs {
		if _, ok := seen[f.ItemID]; ok {
			continue
		}
		seen[f.ItemID] = struct{}{}
		result = append(result, f.ItemID)
	}

	return result
}

// intersect keeps the ids of a, in order, that are also present in b
func intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}

	result := []string{}
	for _, id := range a {
		if _, ok := inB[id]; ok {
			result = append(result, id)
		}
	}

	return result
}
