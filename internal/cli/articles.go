package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/foliage/internal/cms"
	"github.com/mithrel/foliage/internal/feed"
	"github.com/mithrel/foliage/internal/present"
	"github.com/mithrel/foliage/internal/util"
	"github.com/mithrel/foliage/pkg/api"
)

// FilterOpts are the list/search filter flags shared by article commands.
type FilterOpts struct {
	Tag   string
	Since string
	Until string
	Order string
	Limit int
}

func addFilterFlags(cmd *cobra.Command, f *FilterOpts) {
	cmd.Flags().StringVar(&f.Tag, "tag", "", "only articles carrying this tag id")
	cmd.Flags().StringVar(&f.Since, "since", "", "only articles published after (RFC3339, 2006-01-02, or 7d/2w/1mo)")
	cmd.Flags().StringVar(&f.Until, "until", "", "only articles published before (same formats as --since)")
	cmd.Flags().StringVar(&f.Order, "order", "-published", "sort order: published|-published|revised|-revised")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "cap the number of articles shown (0 means all)")
}

func addOutputFlags(cmd *cobra.Command, outputMode *string, noHeaders *bool) {
	cmd.Flags().StringVar(outputMode, "output", "plain", "output mode: plain|pretty|json|ndjson|tui")
	cmd.Flags().BoolVar(noHeaders, "noheaders", false, "hide column headers (plain)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"plain", "pretty", "json", "ndjson", "tui"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func newArticlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Inspect the article feed",
	}
	cmd.AddCommand(newArticlesListCmd())
	cmd.AddCommand(newArticlesSearchCmd())
	cmd.AddCommand(newArticlesShowCmd())
	return cmd
}

func newArticlesListCmd() *cobra.Command {
	var filters FilterOpts
	var outputMode string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles from the CMS",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			defer func() { _ = app.Close() }()
			if err := requireCMS(app); err != nil {
				return err
			}
			articles, err := fetchFiltered(cmd, filters)
			if err != nil {
				return err
			}
			opts, err := outputOptions(outputMode, noHeaders)
			if err != nil {
				return err
			}
			return renderArticles(cmd, articles, opts)
		},
	}
	addFilterFlags(cmd, &filters)
	addOutputFlags(cmd, &outputMode, &noHeaders)
	return cmd
}

func newArticlesSearchCmd() *cobra.Command {
	var filters FilterOpts
	var outputMode string
	var noHeaders bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy-search articles by title, tags, and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			defer func() { _ = app.Close() }()
			if err := requireCMS(app); err != nil {
				return err
			}
			articles, err := fetchFiltered(cmd, filters)
			if err != nil {
				return err
			}
			articles = feed.Search(articles, args[0])
			opts, err := outputOptions(outputMode, noHeaders)
			if err != nil {
				return err
			}
			return renderArticles(cmd, articles, opts)
		},
	}
	addFilterFlags(cmd, &filters)
	addOutputFlags(cmd, &outputMode, &noHeaders)
	return cmd
}

func newArticlesShowCmd() *cobra.Command {
	var outputMode string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			defer func() { _ = app.Close() }()
			if err := requireCMS(app); err != nil {
				return err
			}
			a, err := app.CMS.Get(cmd.Context(), args[0])
			if errors.Is(err, cms.ErrNotFound) {
				return fmt.Errorf("no article with id %q", args[0])
			}
			if err != nil {
				return err
			}
			mode, ok := present.ParseMode(strings.ToLower(outputMode))
			if !ok {
				return fmt.Errorf("invalid --output: %s", outputMode)
			}
			return renderArticle(cmd, a, present.Options{Mode: mode, Headers: true})
		},
	}
	cmd.Flags().StringVar(&outputMode, "output", "pretty", "output mode: plain|pretty|json")
	return cmd
}

// fetchFiltered pulls the full article list and applies the shared filters.
func fetchFiltered(cmd *cobra.Command, filters FilterOpts) ([]api.Article, error) {
	app := getApp(cmd)
	articles, err := app.CMS.ListAll(cmd.Context(), app.Cfg.GetInt("cms.page_size"))
	if err != nil {
		return nil, err
	}

	since, until, err := util.TimeRange(filters.Since, filters.Until)
	if err != nil {
		return nil, err
	}
	articles = feed.FilterTag(articles, filters.Tag)
	articles = filterPublished(articles, since, until)
	articles = feed.SortBy(articles, filters.Order)
	if filters.Limit > 0 && len(articles) > filters.Limit {
		articles = articles[:filters.Limit]
	}
	return articles, nil
}

func filterPublished(articles []api.Article, since, until time.Time) []api.Article {
	if since.IsZero() && until.IsZero() {
		return articles
	}
	out := make([]api.Article, 0, len(articles))
	for _, a := range articles {
		if !since.IsZero() && a.PublishedAt.Before(since) {
			continue
		}
		if !until.IsZero() && a.PublishedAt.After(until) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func outputOptions(outputMode string, noHeaders bool) (present.Options, error) {
	mode, ok := present.ParseMode(strings.ToLower(outputMode))
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", outputMode)
	}
	return present.Options{
		Mode:       mode,
		JSONIndent: false, // pretty-print via external tools like jq
		Headers:    !noHeaders,
	}, nil
}
