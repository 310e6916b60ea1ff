package channels

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mediato115/internal/bus"
)

// ConsoleName is the channel name used for events raised from the CLI.
const ConsoleName = "console"

// Console prints notifications to a writer. Menus are rendered as a table
// listing the item ID to pass to "mediato115 select".
type Console struct {
	*baseChannel
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a console channel writing to out.
func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	return &Console{
		baseChannel: newBaseChannel(ConsoleName, nil, logger),
		out:         out,
	}
}

func (c *Console) Start(context.Context, bus.Dispatch) error {
	c.setRunning(true)
	return nil
}

func (c *Console) Stop(context.Context) error {
	c.setRunning(false)
	return nil
}

func (c *Console) Post(_ context.Context, n bus.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !n.HasButtons() {
		_, err := fmt.Fprintln(c.out, n.Body())
		return err
	}
	if _, err := fmt.Fprintln(c.out, n.Title); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.out, renderMenu(n))
	return err
}

func renderMenu(n bus.Notification) string {
	lines := strings.Split(strings.TrimRight(n.Text, "\n"), "\n")

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Item", "ID"})
	idx := 0
	for _, row := range n.Buttons {
		for _, b := range row {
			_, id, _ := bus.DecodePayload(b.Payload)
			item := ""
			if idx < len(lines) {
				item = menuLineItem(lines[idx])
			}
			tw.AppendRow(table.Row{b.Label, item, id})
			idx++
		}
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// menuLineItem strips the "n. " prefix from a menu text line.
func menuLineItem(line string) string {
	if _, rest, ok := strings.Cut(line, ". "); ok {
		return rest
	}
	return line
}
