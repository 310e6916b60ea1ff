package plugin

import (
	"fmt"
	"strconv"
	"strings"

	"mediato115/internal/bus"
	"mediato115/internal/mediaindex"
)

const menuTitle = "Multiple matches found, choose the item to upload:"

// buildMenu renders the first MaxMenuOptions entries as a numbered list with
// one button per entry, all on a single row.
func buildMenu(entries []mediaindex.Entry, origin bus.Origin) bus.Notification {
	if len(entries) > MaxMenuOptions {
		entries = entries[:MaxMenuOptions]
	}
	var text strings.Builder
	row := make([]bus.Button, 0, len(entries))
	for i, entry := range entries {
		label := strconv.Itoa(i + 1)
		fmt.Fprintf(&text, "%s. %s|%s\n", label, entry.Title, entry.Label())
		row = append(row, bus.Button{
			Label:   label,
			Payload: bus.EncodePayload(PluginID, entry.ID),
		})
	}
	n := origin.Reply(menuTitle, text.String())
	n.Buttons = [][]bus.Button{row}
	return n
}
