package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beltflow/pkg/cache"
	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/render"
	"github.com/matzehuels/beltflow/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// validFormats is the set of supported render output formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPDF: true, formatPNG: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file; derived from the input name when empty
	format   string // dot, svg, pdf, png
	detailed bool   // show each node's items in its box
	cluster  bool   // group each object's nodes
	noCache  bool   // skip the render cache
	redisURL string // use Redis instead of the file cache
}

// renderCommand creates the render command, which draws the products graph.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, detailed: true}

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Draw the products graph of a layout",
		Long: `Render wires a layout into the products graph and draws it with Graphviz.

DOT is written as-is (to stdout unless -o is given). SVG is laid out
in-process; PDF and PNG are converted from SVG with rsvg-convert. Rendered
artifacts are cached by content, locally or in Redis (--redis).`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayout,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot', 'svg', 'pdf', or 'png')", opts.format)
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", opts.detailed, "show items inside each node")
	cmd.Flags().BoolVar(&opts.cluster, "cluster", false, "group the nodes of each object")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "cache renders in Redis (redis://host:port/db)")
	completeFormat(cmd, formatSVG, formatDOT, formatPDF, formatPNG)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	_, engine, _, err := c.openLayout(ctx, input)
	if err != nil {
		return err
	}
	_, err = engine.Products()
	if err := warnCycles(ctx, err); err != nil {
		return err
	}
	dot := nodelink.ToDOT(engine.Graph(), nodelink.Options{Detailed: opts.detailed, Cluster: opts.cluster})

	outputPath := opts.output
	if outputPath == "" && opts.format != formatDOT {
		outputPath = basePath(input) + "." + opts.format
	}

	var data []byte
	cached := false
	if opts.format == formatDOT {
		data = []byte(dot)
	} else {
		store, err := newCache(ctx, opts.noCache, opts.redisURL)
		if err != nil {
			return err
		}
		defer store.Close()

		spinner := newSpinnerWithContext(ctx, "Rendering "+strings.ToUpper(opts.format))
		spinner.Start()
		data, cached, err = renderArtifact(ctx, store, dot, opts.format)
		if err != nil {
			spinner.StopWithError(err.Error())
			return err
		}
		spinner.Stop()
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	if outputPath != "" {
		printSuccess("Rendered %s", opts.format)
		printStats(engine.Graph().NodeCount(), engine.Graph().EdgeCount(), cached)
		printFile(outputPath)
	}
	return nil
}

// renderArtifact lays out dot in the requested format, going through the
// cache. The DOT text fully determines the output, so it is the cache key.
func renderArtifact(ctx context.Context, store cache.Cache, dot, format string) ([]byte, bool, error) {
	key := cache.Key("render", format, dot)

	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() (err error) {
		data, hit, err = store.Get(ctx, key)
		return err
	})
	if err != nil {
		loggerFromContext(ctx).Warn("render cache unavailable", "err", err)
	}
	if hit {
		return data, true, nil
	}

	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	switch format {
	case formatSVG:
		data = svg
	case formatPDF:
		data, err = render.ToPDF(ctx, svg)
	case formatPNG:
		data, err = render.ToPNG(ctx, svg, 2.0)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", format)
	}
	if err != nil {
		return nil, false, err
	}

	if err := store.Set(ctx, key, data, renderTTL); err != nil {
		loggerFromContext(ctx).Warn("cache render", "err", err)
	}
	return data, false, nil
}

// basePath strips the extension from the input path. Reading from stdin
// yields "layout".
func basePath(input string) string {
	if input == "-" {
		return "layout"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}
