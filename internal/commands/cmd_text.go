package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/foliops/folio/internal/core/styles"
	"github.com/foliops/folio/internal/engine/pdfengine"
)

type TextCmd struct {
	flags *Flags

	// flags
	page int
}

// NewTextCmd creates a new text command.
func NewTextCmd(flags *Flags) *TextCmd {
	return &TextCmd{flags: flags}
}

// Register adds the text command to the application.
func (cmd *TextCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "text",
		Usage:     "Dump a document's plain text",
		UsageText: "folio text [--page N] <file.pdf>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "page",
				Usage:       "1-based page to dump (default: all pages)",
				Destination: &cmd.page,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *TextCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	doc, err := pdfengine.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	first, last := 0, doc.PageCount()-1
	if cmd.page > 0 {
		if cmd.page > doc.PageCount() {
			return fmt.Errorf("document has %d pages, no page %d", doc.PageCount(), cmd.page)
		}
		first, last = cmd.page-1, cmd.page-1
	}

	// page headers only when a human reads the output directly
	headers := term.IsTerminal(int(os.Stdout.Fd())) && first != last
	out := c.Root().Writer

	for i := first; i <= last; i++ {
		page, err := doc.Page(i)
		if err != nil {
			return err
		}
		text, err := page.Text()
		if err != nil {
			return fmt.Errorf("extract page %d: %w", i+1, err)
		}
		if headers {
			header := "page " + strconv.Itoa(i+1)
			fmt.Fprintln(out, styles.CommandHeaderStyle.Render(header))
			fmt.Fprintln(out, styles.DividerStyle.Render("────────"))
		}
		fmt.Fprintln(out, text)
	}
	return nil
}
