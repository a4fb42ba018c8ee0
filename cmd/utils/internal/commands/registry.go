package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aquamarinepk/aqm"
)

// Command is one operator task against the lifecycle database.
type Command struct {
	Name    string
	Summary string
	Run     func(ctx context.Context, config *aqm.Config, logger aqm.Logger) error
}

var registry = []Command{
	{Name: "seed-demo", Summary: "seed demo menu, staff and orders placed through the service", Run: SeedDemo},
	{Name: "clear-demo", Summary: "delete demo orders and their kitchen orders", Run: ClearDemo},
	{Name: "reset-db", Summary: "drop the lifecycle database", Run: ResetDB},
}

// Lookup finds a command by name.
func Lookup(name string) (Command, bool) {
	for _, c := range registry {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Usage prints the command list. Config keys are read from UTILS_* env vars
// or flags, the same keys the service uses (db.mongo.url, db.mongo.name).
func Usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "usage: %s <command> [flags]\n\n", prog)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range registry {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Summary)
	}
	tw.Flush()
	fmt.Fprintln(w, "\nconfig: UTILS_DB_MONGO_URL, UTILS_DB_MONGO_NAME, UTILS_LOG_LEVEL")
}
