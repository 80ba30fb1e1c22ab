package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/application/subscriptions"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/router"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/memory"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/postgres"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/sqlite"
	"github.com/diwise/item-drive/internal/pkg/presentation/api/rest"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const serviceName string = "item-drive"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	flags := parseExternalConfig(ctx, DefaultFlags())

	cfg, err := loadAppConfig(ctx, flags)
	if err != nil {
		fatal(ctx, "failed to load configuration", err)
	}

	handler, shutdown, err := initialize(ctx, flags, cfg)
	if err != nil {
		fatal(ctx, "failed to initialize service", err)
	}
	defer shutdown()

	logger.Info("starting to listen for connections", "port", flags[servicePort])

	err = http.ListenAndServe(":"+flags[servicePort], handler)
	if err != nil {
		fatal(ctx, "failed to listen for connections", err)
	}
}

func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {
	flags = loadEnvironment(ctx, flags)

	apply := func(f FlagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	flag.Func("config", "path to the item drive configuration file", apply(configPath))
	flag.Func("policies", "path to a file with authorization policies", apply(opaPath))
	flag.Parse()

	return flags
}

// initialize wires storage, the drive and the http handlers. The returned function
// stops the drive and releases the storage backend.
func initialize(ctx context.Context, flags FlagMap, cfg *AppConfig) (http.Handler, func(), error) {
	log := logging.GetFromContext(ctx)

	source, closeStorage, err := newDataSource(ctx, cfg.driveConfig.Storage)
	if err != nil {
		return nil, nil, err
	}

	options := []itemdrive.Option{
		itemdrive.WithExternalReferences(cfg.driveConfig.Ontology.AllowExternalReferences),
	}

	if flags[notifierEndpoint] != "" {
		notifier, err := subscriptions.NewNotifier(ctx, flags[notifierEndpoint])
		if err != nil {
			closeStorage()
			return nil, nil, err
		}
		options = append(options, itemdrive.WithNotifier(notifier))
	}

	app := itemdrive.New(source, options...)

	err = app.Start()
	if err != nil {
		closeStorage()
		return nil, nil, fmt.Errorf("failed to start item drive: %w", err)
	}

	shutdown := func() {
		app.Stop()
		closeStorage()
	}

	for _, seed := range cfg.driveConfig.Ontology.Seeds {
		err = ingestFile(ctx, app, seed)
		if err != nil {
			shutdown()
			return nil, nil, err
		}
	}

	if flags[authToken] == "" {
		log.Warn("no authorization token configured, all writes will be denied")
	}

	r := router.New(serviceName)

	err = rest.RegisterHandlers(ctx, r, cfg.policies, flags[authToken], app)
	if err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return r, shutdown, nil
}

func newDataSource(ctx context.Context, cfg itemdrive.StorageConfig) (itemdrive.DataSource, func(), error) {
	log := logging.GetFromContext(ctx)

	switch cfg.Backend {
	case itemdrive.BackendMemory:
		return memory.New(), func() {}, nil
	case itemdrive.BackendSQLite:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error("failed to close sqlite database", "err", err.Error())
			}
		}, nil
	case itemdrive.BackendPostgres:
		connStr := cfg.DSN
		if connStr == "" {
			connStr = postgres.LoadConfiguration(ctx).ConnStr()
		}
		store, err := postgres.Connect(ctx, connStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func ingestFile(ctx context.Context, app itemdrive.ItemDrive, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed document: %w", err)
	}
	defer f.Close()

	ingested, err := itemdrive.IngestDocument(ctx, app, f)
	if err != nil {
		return fmt.Errorf("failed to ingest seed document %s: %w", path, err)
	}

	logging.GetFromContext(ctx).Info("ingested seed document", "path", path, "count", len(ingested))

	return nil
}

func fatal(ctx context.Context, msg string, err error) {
	logger := logging.GetFromContext(ctx)
	logger.Error(msg, "err", err.Error())
	os.Exit(1)
}
