// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/optoscholar/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage saved articles",
	Long: `Library lists, saves, removes, and exports the articles saved from search
results. The library is persisted to a JSON file by default, or to SQLite or
S3 when library.backend is set.`,
}

// --- list subcommand ---

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved articles",
	RunE:  runLibraryList,
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	store, closeStore, err := openLibrary(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	articles := store.Articles()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return library.WriteJSON(cmd.OutOrStdout(), articles)
	}
	out := cmd.OutOrStdout()
	formatArticleTable(out, articles, 1, nil)
	fmt.Fprintf(out, "\n%d saved\n", len(articles))
	return nil
}

// --- toggle subcommand ---

var libraryToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Save an article, or remove it if already saved",
	Long: `Toggle removes the article from the library when it is saved; otherwise
it fetches the article summary from the index and saves it.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryToggle,
}

func runLibraryToggle(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, closeStore, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	id := args[0]
	if a, ok := store.Get(id); ok {
		store.Toggle(a)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", id)
		return nil
	}

	a, err := lookupArticle(ctx, newGateway(cfg), nil, id)
	if err != nil {
		return err
	}
	store.Toggle(a)
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s\n", id, a.Title)
	return nil
}

// --- remove subcommand ---

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a saved article",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryRemove,
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	store, closeStore, err := openLibrary(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if store.Remove(args[0]) {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not saved.\n", args[0])
	}
	return nil
}

// --- export subcommand ---

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library as CSV, JSON, or CSL-YAML",
	Long: `Export writes every saved article. CSV quotes every field and joins
authors with "; ". JSON is the persisted record shape. CSL-YAML can be
imported into reference managers.`,
	RunE: runLibraryExport,
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	cfg, err := config()
	if err != nil {
		return err
	}
	store, closeStore, err := openLibrary(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	articles := store.Articles()
	if err := library.Export(w, articles, library.Format(format)); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Exported %d articles to %s\n", len(articles), outPath)
	}
	return nil
}

func init() {
	libraryListCmd.Flags().Bool("json", false, "output the library as JSON")

	libraryExportCmd.Flags().String("format", "csv", "export format: csv, json, or csl")
	libraryExportCmd.Flags().String("out", "", "output file (default stdout)")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryToggleCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryCmd.AddCommand(libraryExportCmd)

	rootCmd.AddCommand(libraryCmd)
}
