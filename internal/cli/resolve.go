package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/products"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	output string // output file; stdout when empty
	format string // "text" or "json"
}

// resolveCommand creates the resolve command, which prints the items every
// object in a layout carries.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "resolve [layout.json]",
		Short: "Print the items each object in a layout carries",
		Long: `Resolve reads a layout (use - for stdin), wires every object into the
products graph, and prints what each node carries.

Belts have two nodes, left lane first. Loops in the layout are reported as
warnings; the items around a loop are still printed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayout,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'text' or 'json')", opts.format)
			}
			return c.runResolve(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json")
	completeFormat(cmd, formatText, formatJSON)

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, input string, opts resolveOpts) error {
	logger := loggerFromContext(ctx)

	_, engine, _, err := c.openLayout(ctx, input)
	if err != nil {
		return err
	}
	snap, err := engine.Snapshot()
	if err := warnCycles(ctx, err); err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	switch opts.format {
	case formatJSON:
		err = writeSnapshotJSON(out, snap, engine.Err())
	default:
		_, err = io.WriteString(out, formatReport(snap)+"\n")
	}
	if err != nil {
		return err
	}

	logger.Debugf("Resolved %d objects", len(snap))
	if opts.output != "" {
		printFile(opts.output)
		printNextStep("Draw the graph", fmt.Sprintf("%s render %s", appName, input))
	}
	return nil
}

// snapshotDoc is the JSON document written by resolve and served by
// POST /v1/resolve.
type snapshotDoc struct {
	Objects []products.ObjectProducts `json:"objects"`
	Cycles  [][]string                `json:"cycles,omitempty"`
}

func newSnapshotDoc(snap []products.ObjectProducts, err error) snapshotDoc {
	doc := snapshotDoc{Objects: snap}
	for _, cy := range products.Cycles(err) {
		doc.Cycles = append(doc.Cycles, cy.Labels)
	}
	return doc
}

func writeSnapshotJSON(w io.Writer, snap []products.ObjectProducts, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newSnapshotDoc(snap, err))
}

var (
	reportHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	reportCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// formatReport renders a snapshot as a table with one row per node.
func formatReport(snap []products.ObjectProducts) string {
	var rows [][]string
	for _, obj := range snap {
		for _, n := range obj.Nodes {
			id := ""
			if n.Index == 0 {
				id = fmt.Sprintf("#%d", obj.ObjectID)
			}
			items := StyleDim.Render("—")
			if n.Items.Len() > 0 {
				items = StyleValue.Render(strings.Join(n.Items.Sorted(), ", "))
			}
			if n.Fixed {
				items += " " + StyleHighlight.Render("(recipe)")
			}
			rows = append(rows, []string{id, n.Label, items})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Object", "Node", "Items").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return reportHeaderStyle.Padding(0, 1)
			}
			return reportCellStyle
		})
	return t.Render()
}
