package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beltflow/pkg/geom"
	"github.com/matzehuels/beltflow/pkg/layout"
	"github.com/matzehuels/beltflow/pkg/products"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// watchCommand creates the watch command, an interactive editor that shows
// products updating as objects are rotated, re-recipied or removed.
func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [layout.json]",
		Short: "Edit a layout interactively and watch products update",
		Long: `Watch opens a layout in a terminal UI. Each edit is applied to the layout
and the products of every affected object are re-resolved immediately.

Keys:
  ↑/k ↓/j   select object
  r / R     rotate clockwise / counter-clockwise
  n / p     next / previous recipe
  x         remove object
  w         write the layout back to disk
  q         quit`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLayout,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runWatch(ctx context.Context, path string) error {
	// The TUI owns the terminal, so engine diagnostics are discarded.
	grid, engine, _, err := c.openLayout(ctx, path, products.WithLogger(log.New(io.Discard)))
	if err != nil {
		return err
	}
	defer engine.Detach()

	savePath := path
	if path == "-" {
		savePath = "layout.json"
	}
	m := newWatchModel(grid, engine, savePath)
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if wm, ok := final.(watchModel); ok && wm.saved != "" {
		printSuccess("Layout saved")
		printFile(wm.saved)
	}
	return nil
}

// =============================================================================
// watchModel - Interactive layout editor
// =============================================================================

// watchModel is the bubbletea model for the watch command.
type watchModel struct {
	grid    *layout.Grid
	engine  *products.Engine
	recipes []string
	path    string

	// tally counts change notifications; it is shared across model copies.
	tally *int

	Cursor int
	Offset int
	Height int

	touched int
	status  string
	saved   string
}

func newWatchModel(grid *layout.Grid, engine *products.Engine, path string) watchModel {
	tally := new(int)
	engine.Observe(products.ObserverFunc(func(products.Change) { *tally++ }))
	return watchModel{
		grid:    grid,
		engine:  engine,
		recipes: recipeChoices(grid),
		path:    path,
		tally:   tally,
		Height:  15,
	}
}

// recipeChoices returns the empty recipe followed by every recipe named in
// the catalog or used in the layout, sorted.
func recipeChoices(grid *layout.Grid) []string {
	set := map[string]bool{}
	for _, r := range grid.Catalog().Recipes() {
		set[r] = true
	}
	for _, o := range grid.Objects() {
		if o.Recipe != "" {
			set[o.Recipe] = true
		}
	}
	return append([]string{""}, slices.Sorted(maps.Keys(set))...)
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) selected() (*layout.Object, bool) {
	objs := m.grid.Objects()
	if m.Cursor < 0 || m.Cursor >= len(objs) {
		return nil, false
	}
	return objs[m.Cursor], true
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.grid.Len()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "r":
			m = m.edit(func(o *layout.Object) error {
				return m.grid.Rotate(o.ID, geom.RotateCW(o.Direction, 1))
			})
		case "R":
			m = m.edit(func(o *layout.Object) error {
				return m.grid.Rotate(o.ID, geom.RotateCW(o.Direction, -1))
			})
		case "n":
			m = m.edit(func(o *layout.Object) error {
				return m.grid.SetRecipe(o.ID, m.stepRecipe(o.Recipe, 1))
			})
		case "p":
			m = m.edit(func(o *layout.Object) error {
				return m.grid.SetRecipe(o.ID, m.stepRecipe(o.Recipe, -1))
			})
		case "x":
			m = m.edit(func(o *layout.Object) error {
				return m.grid.Remove(o.ID)
			})
			if n := m.grid.Len(); m.Cursor >= n && n > 0 {
				m.Cursor = n - 1
			}
		case "w":
			if err := layout.ExportJSON(m.grid, m.path); err != nil {
				m.status = "save failed: " + err.Error()
			} else {
				m.saved = m.path
				m.status = "saved " + m.path
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// edit applies fn to the selected object and records how many nodes were
// re-resolved as a result.
func (m watchModel) edit(fn func(*layout.Object) error) watchModel {
	obj, ok := m.selected()
	if !ok {
		return m
	}
	label := obj.String()
	*m.tally = 0
	if err := fn(obj); err != nil {
		m.status = err.Error()
		return m
	}
	m.touched = *m.tally
	m.status = fmt.Sprintf("%s: %d nodes re-resolved", label, m.touched)
	return m
}

func (m watchModel) stepRecipe(current string, step int) string {
	i := slices.Index(m.recipes, current)
	if i < 0 {
		i = 0
	}
	n := len(m.recipes)
	return m.recipes[((i+step)%n+n)%n]
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Products"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  r/R rotate  n/p recipe  x remove  w save  q quit"))
	b.WriteString("\n\n")

	objs := m.grid.Objects()
	items := map[int]string{}
	snap, _ := m.engine.Snapshot()
	for _, op := range snap {
		lanes := make([]string, len(op.Nodes))
		for i, n := range op.Nodes {
			lanes[i] = n.Items.String()
		}
		items[op.ObjectID] = strings.Join(lanes, " ")
	}

	end := min(m.Offset+m.Height, len(objs))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		o := objs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		recipe := o.Recipe
		if recipe == "" {
			recipe = "—"
		}
		rows = append(rows, []string{cursor, fmt.Sprintf("#%d", o.ID), o.Name, o.Direction.String(), recipe, items[o.ID]})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Object", "Facing", "Recipe", "Items").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 3 || col == 4 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(objs)), len(objs))))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(StyleHighlight.Render(m.status))
	}
	for _, cy := range products.Cycles(m.engine.Err()) {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render("loop: " + strings.Join(cy.Labels, " → ")))
	}

	return b.String()
}
