package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/foliops/folio/internal/engine"
	"github.com/foliops/folio/internal/engine/pdfengine"
	"github.com/foliops/folio/internal/fetch"
	"github.com/foliops/folio/internal/tui"
)

// maxConcurrentOpens bounds parallel document parsing at startup.
const maxConcurrentOpens = 4

type ViewCmd struct {
	flags *Flags
}

// NewViewCmd creates the default interactive viewer command.
func NewViewCmd(flags *Flags) *ViewCmd {
	return &ViewCmd{flags: flags}
}

// Run opens every argument as a tab and starts the interactive shell.
// Arguments may be paths or doublestar glob patterns; paths that do not
// resolve to an openable PDF are reported and skipped.
func (cmd *ViewCmd) Run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	paths, warnings := expandArgs(c.Args().Slice())
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	docs, openWarnings := openAll(ctx, paths)
	for _, w := range openWarnings {
		fmt.Fprintln(os.Stderr, w)
	}

	model := tui.New(tui.Options{
		Config: cfg,
		Log:    log.Logger,
		Opener: tui.Opener{
			OpenPath:  func(path string) (engine.Document, error) { return pdfengine.Open(path) },
			OpenBytes: func(data []byte, label string) (engine.Document, error) { return pdfengine.OpenBytes(data, label) },
		},
		Fetcher: fetch.New(cfg.Fetch.MaxBytes, log.Logger),
	})
	for _, d := range docs {
		model.AddTab(d.doc, d.path)
	}

	return tui.Run(model)
}

type openedDoc struct {
	path string
	doc  engine.Document
}

// expandArgs resolves glob patterns and filters every argument, literal
// or globbed, to .pdf paths, keeping the argument order.
func expandArgs(args []string) (paths []string, warnings []string) {
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			if !strings.HasSuffix(strings.ToLower(arg), ".pdf") {
				warnings = append(warnings, fmt.Sprintf("skipping %s: not a .pdf file", arg))
				continue
			}
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("bad pattern %q: %v", arg, err))
			continue
		}
		if len(matches) == 0 {
			warnings = append(warnings, fmt.Sprintf("no files match %q", arg))
			continue
		}
		for _, m := range matches {
			if strings.HasSuffix(strings.ToLower(m), ".pdf") {
				paths = append(paths, m)
			}
		}
	}
	return paths, warnings
}

// openAll parses documents concurrently but keeps tab order stable.
// Failures skip the document rather than aborting startup.
func openAll(ctx context.Context, paths []string) ([]openedDoc, []string) {
	type slot struct {
		doc openedDoc
		err error
	}
	slots := make([]slot, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOpens)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := pdfengine.Open(path)
			slots[i] = slot{doc: openedDoc{path: path, doc: doc}, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var docs []openedDoc
	var warnings []string
	for i, s := range slots {
		if s.err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", paths[i], s.err))
			continue
		}
		docs = append(docs, s.doc)
	}
	return docs, warnings
}
