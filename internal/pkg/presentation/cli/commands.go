package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/diwise/item-drive/internal/pkg/application/itemdrive"
	"github.com/diwise/item-drive/pkg/drive/facts"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(
		&cobra.Command{
			Use:   "ingest <file.jsonld>",
			Short: "Flatten a JSON-LD document and store its nodes as items",
			Args:  cobra.ExactArgs(1),
			Run:   withDrive("ingest", ingest),
		},
		&cobra.Command{
			Use:   "get <itemID>",
			Short: "Retrieve an item with all of its facts",
			Args:  cobra.ExactArgs(1),
			Run:   withDrive("get", get),
		},
		&cobra.Command{
			Use:   "query <json>",
			Short: "Retrieve the items matching a JSON array of fact queries",
			Args:  cobra.ExactArgs(1),
			Run:   withDrive("query", query),
		},
		&cobra.Command{
			Use:   "check <itemID>",
			Short: "Validate a stored item against the ontology in the drive",
			Args:  cobra.ExactArgs(1),
			Run:   withDrive("check", check),
		},
		&cobra.Command{
			Use:   "fact <factID>",
			Short: "Retrieve a single fact",
			Args:  cobra.ExactArgs(1),
			Run:   withDrive("fact", fact),
		},
	)
}

type command func(ctx context.Context, drive itemdrive.ItemDrive, arg string, out io.Writer) error

func withDrive(name string, run command) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		drive, closeDrive, err := openDrive()
		if err != nil {
			exitErr("open drive", err)
		}
		defer closeDrive()

		if err := run(cmd.Context(), drive, args[0], cmd.OutOrStdout()); err != nil {
			exitErr(name, err)
		}
	}
}

func ingest(ctx context.Context, drive itemdrive.ItemDrive, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ingested, err := itemdrive.IngestDocument(ctx, drive, f)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "ingested %d items\n", len(ingested))
	return err
}

func get(ctx context.Context, drive itemdrive.ItemDrive, itemID string, out io.Writer) error {
	item, err := drive.FetchItem(ctx, itemID)
	if err != nil {
		return err
	}

	if item == nil {
		return fmt.Errorf("item %s not found", itemID)
	}

	return printJSON(out, item)
}

func query(ctx context.Context, drive itemdrive.ItemDrive, q string, out io.Writer) error {
	queries := []facts.Query{}

	err := json.Unmarshal([]byte(q), &queries)
	if err != nil {
		return fmt.Errorf("unable to decode query: %w", err)
	}

	result, err := drive.FetchItems(ctx, queries)
	if err != nil {
		return err
	}

	return printJSON(out, result)
}

func check(ctx context.Context, drive itemdrive.ItemDrive, itemID string, out io.Writer) error {
	item, err := drive.FetchItem(ctx, itemID)
	if err != nil {
		return err
	}

	if item == nil {
		return fmt.Errorf("item %s not found", itemID)
	}

	err = drive.CheckItem(ctx, *item)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s is valid\n", itemID)
	return err
}

func fact(ctx context.Context, drive itemdrive.ItemDrive, factID string, out io.Writer) error {
	f, err := drive.FetchFact(ctx, factID)
	if err != nil {
		return err
	}

	return printJSON(out, f)
}
