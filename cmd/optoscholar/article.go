// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/optoscholar/internal/citation"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// --- cite ---

var citeCmd = &cobra.Command{
	Use:   "cite <id>",
	Short: "Print a citation for an article",
	Long: `Cite formats an article in AMA, APA, or MLA style. Saved articles are cited
from the library; others are fetched from the index. With --style all, one
citation per style is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

func runCite(cmd *cobra.Command, args []string) error {
	styleName, _ := cmd.Flags().GetString("style")
	styles := citation.Styles
	if !strings.EqualFold(styleName, "all") {
		s, err := citation.ParseStyle(styleName)
		if err != nil {
			return err
		}
		styles = []citation.Style{s}
	}

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

	a, err := lookupArticle(ctx, newGateway(cfg), store, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range styles {
		if len(styles) > 1 {
			fmt.Fprintf(out, "%s: ", s)
		}
		fmt.Fprintln(out, citation.Format(a, s))
	}
	return nil
}

// --- related ---

var relatedCmd = &cobra.Command{
	Use:   "related <id>",
	Short: "List up to five articles related to an article",
	Long: `Related asks the index for its neighbour links of the article. When there
are none, it falls back to a title keyword search. Failures yield an empty
list.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func runRelated(cmd *cobra.Command, args []string) error {
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

	gw := newGateway(cfg)
	id := args[0]
	title := ""
	if a, err := lookupArticle(ctx, gw, store, id); err == nil {
		title = a.Title
	}

	related := gw.Related(ctx, id, title)
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		if related == nil {
			related = []types.ArticleRecord{}
		}
		return writeJSON(cmd.OutOrStdout(), related)
	}
	formatArticleTable(cmd.OutOrStdout(), related, 1, store.Contains)
	return nil
}

// --- abstract ---

var abstractCmd = &cobra.Command{
	Use:   "abstract <id>",
	Short: "Print an article's abstract and keywords",
	Args:  cobra.ExactArgs(1),
	RunE:  runAbstract,
}

func runAbstract(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	abs, err := newGateway(cfg).FetchAbstract(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, abs.Text)
	if len(abs.Keywords) > 0 {
		fmt.Fprintf(out, "\nKeywords: %s\n", strings.Join(abs.Keywords, ", "))
	}
	return nil
}

// --- medline ---

var medlineCmd = &cobra.Command{
	Use:   "medline <id>",
	Short: "Print an article's MEDLINE record",
	Args:  cobra.ExactArgs(1),
	RunE:  runMedline,
}

func runMedline(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	text, err := newGateway(cfg).FetchMedline(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// --- journals ---

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List the journals searches are restricted to",
	RunE:  runJournals,
}

func runJournals(cmd *cobra.Command, args []string) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, j := range cfg.Gateway.Journals {
		fmt.Fprintln(out, j)
	}

	if count, _ := cmd.Flags().GetBool("count"); !count {
		return nil
	}
	n, ok := newGateway(cfg).IndexCount(cmd.Context())
	if !ok {
		fmt.Fprintln(os.Stderr, "Index count unavailable.")
		return nil
	}
	fmt.Fprintf(out, "\n%d journals, %d indexed articles\n", len(cfg.Gateway.Journals), n)
	return nil
}

func init() {
	citeCmd.Flags().String("style", "ama", "citation style: ama, apa, mla, or all")
	relatedCmd.Flags().Bool("json", false, "output related articles as JSON")
	journalsCmd.Flags().Bool("count", false, "also report how many articles the journals cover")

	rootCmd.AddCommand(citeCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(abstractCmd)
	rootCmd.AddCommand(medlineCmd)
	rootCmd.AddCommand(journalsCmd)
}
