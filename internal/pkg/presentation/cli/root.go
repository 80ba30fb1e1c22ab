// Package cli implements the itemctl commands over a local SQLite item drive.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/internal/pkg/infrastructure/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	dbPath        string
	allowExternal bool

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "itemctl",
	Short: "Inspect and populate a local item drive",
	Long:  "A small CLI for storing, querying and validating items in a SQLite backed item drive.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $ITEMDRIVE_DB or ~/.item-drive/drive.db)")
	RootCmd.PersistentFlags().BoolVar(&allowExternal, "allow-external", false, "Accept references to items that are not stored in the drive")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("ITEMDRIVE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".item-drive", "drive.db")
}

func openDrive() (itemdrive.ItemDrive, func(), error) {
	store, err := sqlite.New(getDBPath())
	if err != nil {
		return nil, nil, err
	}

	drive := itemdrive.New(store, itemdrive.WithExternalReferences(allowExternal))

	return drive, func() { store.Close() }, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func reportErr(msg string, err error) {
	logger.Error(msg, "err", err.Error())
}

func exitErr(msg string, err error) {
	reportErr(msg, err)
	os.Exit(1)
}
