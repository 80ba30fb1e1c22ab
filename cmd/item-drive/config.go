package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/presentation/api/rest/auth"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	servicePort FlagType = iota

	configPath
	opaPath

	authToken
	notifierEndpoint
)

type AppConfig struct {
	driveConfig *itemdrive.Config
	policies    io.Reader
}

func DefaultFlags() FlagMap {
	return FlagMap{
		servicePort: "8080",
		configPath:  "/opt/diwise/config/item-drive.yaml",
		opaPath:     "/opt/diwise/config/authz.rego",
	}
}

func loadEnvironment(ctx context.Context, flags FlagMap) FlagMap {
	flags[servicePort] = env.GetVariableOrDefault(ctx, "SERVICE_PORT", flags[servicePort])
	flags[authToken] = env.GetVariableOrDefault(ctx, "AUTHORIZATION_TOKEN", flags[authToken])
	flags[notifierEndpoint] = env.GetVariableOrDefault(ctx, "NOTIFIER_ENDPOINT", flags[notifierEndpoint])
	return flags
}

// loadAppConfig reads the configuration and policy files named by flags. Missing files
// fall back to the default configuration and the embedded policy.
func loadAppConfig(ctx context.Context, flags FlagMap) (*AppConfig, error) {
	log := logging.GetFromContext(ctx)
	cfg := &AppConfig{}

	configFile, err := os.Open(flags[configPath])
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open configuration file: %w", err)
		}

		log.Info("no configuration file found, using defaults", "path", flags[configPath])
		cfg.driveConfig = itemdrive.DefaultConfiguration()
	} else {
		defer configFile.Close()

		cfg.driveConfig, err = itemdrive.LoadConfiguration(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	policies, err := os.ReadFile(flags[opaPath])
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read policies: %w", err)
		}

		log.Info("no policy file found, using the default policy", "path", flags[opaPath])
		policies = []byte(auth.DefaultPolicy)
	}

	cfg.policies = bytes.NewReader(policies)

	return cfg, nil
}
