// Command inspect_state prints what the bot would load from its data
// directory. Malformed records are reported by the loaders and skipped.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kapu/destiny-clan-bot-go/internal/domain"
	"github.com/kapu/destiny-clan-bot-go/internal/service/registry"
	"github.com/kapu/destiny-clan-bot-go/internal/service/roster"
	"github.com/kapu/destiny-clan-bot-go/internal/util"
)

var (
	dataDir = flag.String("data-dir", "data", "Directory holding the persisted JSON documents")
	verbose = flag.Bool("verbose", false, "List every record")
)

func main() {
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(os.Stdout, *dataDir, *verbose, logger); err != nil {
		fmt.Fprintf(os.Stderr, "inspect failed: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, dir string, verbose bool, logger *zap.Logger) error {
	snapshot := roster.NewSnapshotStore(filepath.Join(dir, "members.json"), logger)
	alerts := registry.NewAlertTargets(filepath.Join(dir, "push_list.json"), logger)
	rest := registry.NewRestRecords(filepath.Join(dir, "rest_list.json"), logger)
	blocks := registry.NewBlockList(filepath.Join(dir, "block_list.json"), nil, logger)

	for _, load := range []func() error{snapshot.Load, alerts.Load, rest.Load, blocks.Load} {
		if err := load(); err != nil {
			return err
		}
	}

	today := domain.DateOf(util.NowKST())
	members := snapshot.Current()
	active := rest.Active(today)

	fmt.Fprintf(out, "data directory : %s\n", dir)
	fmt.Fprintf(out, "members        : %d\n", len(members))
	fmt.Fprintf(out, "alert targets  : %d\n", len(alerts.List()))
	fmt.Fprintf(out, "rest records   : %d (%d active on %s)\n", len(rest.List()), len(active), today)
	fmt.Fprintf(out, "block records  : %d\n", blocks.Len())

	if !verbose {
		return nil
	}

	fmt.Fprintln(out, "\n[members]")
	for _, m := range members {
		fmt.Fprintf(out, "  %s %s (%s)\n", m.MembershipID, m.BungieName(), m.MembershipType)
	}
	fmt.Fprintln(out, "\n[alert targets]")
	for _, ch := range alerts.List() {
		fmt.Fprintf(out, "  %s\n", ch)
	}
	fmt.Fprintln(out, "\n[rest]")
	for _, r := range rest.List() {
		fmt.Fprintf(out, "  %s %s ~ %s\n", r.MembershipID, r.BungieName, r.EndDate)
	}
	fmt.Fprintln(out, "\n[blocks]")
	for page, total := 0, 1; page < total; page++ {
		result := blocks.List(page)
		total = result.TotalPages
		for _, b := range result.Records {
			fmt.Fprintf(out, "  %s %s %s\n", b.MembershipID, b.BungieName, b.Description)
		}
	}
	return nil
}
