package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/foliops/folio/internal/engine/pdfengine"
)

type InfoCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewInfoCmd creates a new info command.
func NewInfoCmd(flags *Flags) *InfoCmd {
	return &InfoCmd{flags: flags}
}

// Register adds the info command to the application.
func (cmd *InfoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "info",
		Usage:     "Print page count and metadata for a document",
		UsageText: "folio info [--json] <file.pdf>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *InfoCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	doc, err := pdfengine.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	meta := doc.Metadata()
	out := c.Root().Writer

	if cmd.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Path     string            `json:"path"`
			Pages    int               `json:"pages"`
			Metadata map[string]string `json:"metadata,omitempty"`
		}{Path: path, Pages: doc.PageCount(), Metadata: meta})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "path\t%s\n", path)
	fmt.Fprintf(w, "pages\t%d\n", doc.PageCount())

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if meta[k] != "" {
			fmt.Fprintf(w, "%s\t%s\n", k, meta[k])
		}
	}
	return w.Flush()
}
