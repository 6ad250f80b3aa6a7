package cli

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/foliage/internal/present"
	"github.com/mithrel/foliage/pkg/api"
)

const defaultPager = "less -FRSX"

func renderArticles(cmd *cobra.Command, articles []api.Article, opts present.Options) error {
	if opts.Mode == present.ModeTUI {
		// The TUI owns the terminal; no pager.
		return present.RenderArticles(cmd.Context(), cmd.OutOrStdout(), articles, opts)
	}
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
		return present.RenderArticles(cmd.Context(), w, articles, opts)
	})
}

func renderArticle(cmd *cobra.Command, a api.Article, opts present.Options) error {
	return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
		return present.RenderArticle(cmd.Context(), w, a, opts)
	})
}

// withPager pipes output through $PAGER when stdout is a terminal, falling
// back to direct writes otherwise.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}
