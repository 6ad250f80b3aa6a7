package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/foliage/internal/cms"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <article-id | file.md>",
		Short: "Render Markdown to the site's HTML",
		Long: "Render an article body through the site pipeline (syntax-highlighted\n" +
			"code blocks, figure images, promo links, sanitization) and print the\n" +
			"HTML fragment. The argument is a local Markdown file when it names one\n" +
			"on disk, otherwise it is treated as a CMS article id.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			defer func() { _ = app.Close() }()

			src, err := loadMarkdown(cmd, args[0])
			if err != nil {
				return err
			}
			html := app.Renderer.Render(src)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(html), "\n"))
			return err
		},
	}
	return cmd
}

func loadMarkdown(cmd *cobra.Command, arg string) ([]byte, error) {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		return os.ReadFile(arg)
	}
	app := getApp(cmd)
	if err := requireCMS(app); err != nil {
		return nil, err
	}
	a, err := app.CMS.Get(cmd.Context(), arg)
	if errors.Is(err, cms.ErrNotFound) {
		return nil, fmt.Errorf("%q is neither a file nor a known article id", arg)
	}
	if err != nil {
		return nil, err
	}
	return []byte(a.Body), nil
}
