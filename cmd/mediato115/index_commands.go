package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediato115/internal/config"
	"mediato115/internal/mediaindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect and seed the media index",
	}
	indexCmd.AddCommand(newIndexSearchCommand(ctx))
	indexCmd.AddCommand(newIndexLookupCommand(ctx))
	indexCmd.AddCommand(newIndexListCommand(ctx))
	indexCmd.AddCommand(newIndexImportCommand(ctx))
	return indexCmd
}

func newIndexSearchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List every entry whose title contains the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(ctx, func(index mediaindex.Backend) error {
				entries, err := index.SearchTitle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printEntries(cmd, entries, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newIndexLookupCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lookup <item-id>",
		Short: "Show the entry with the given ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIndex(ctx, func(index mediaindex.Backend) error {
				entries, err := index.LookupID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printEntries(cmd, entries, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newIndexListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in the SQLite index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLiteIndex(ctx, func(store *mediaindex.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printEntries(cmd, entries, asJSON)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newIndexImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Upsert entries from a JSON array into the SQLite index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				r = f
			}
			return withSQLiteIndex(ctx, func(store *mediaindex.Store) error {
				n, err := store.Import(cmd.Context(), r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", n, store.Path())
				return nil
			})
		},
	}
}

func withIndex(ctx *commandContext, fn func(mediaindex.Backend) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	index, err := mediaindex.Open(cfg)
	if err != nil {
		return fmt.Errorf("open media index: %w", err)
	}
	defer index.Close()
	return fn(index)
}

func withSQLiteIndex(ctx *commandContext, fn func(*mediaindex.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if cfg.Index.Backend != config.IndexBackendSQLite {
		return errors.New("index list and import require the sqlite index backend")
	}
	store, err := mediaindex.OpenSQLite(cfg.Index.DBPath, cfg.Index.Table)
	if err != nil {
		return fmt.Errorf("open media index: %w", err)
	}
	defer store.Close()
	return fn(store)
}

type entryJSON struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Path  string `json:"path"`
}

func printEntries(cmd *cobra.Command, entries []mediaindex.Entry, asJSON bool) error {
	if asJSON {
		out := make([]entryJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, entryJSON{ID: e.ID, Title: e.Title, Type: e.Label(), Path: e.Path})
		}
		return writeJSON(cmd, out)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching entries")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Title, e.Label(), strings.TrimSpace(e.Path)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Type", "Path"}, rows, nil))
	return nil
}
