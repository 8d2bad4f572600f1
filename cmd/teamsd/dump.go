package main

import (
	"fmt"
	"time"

	"github.com/l1jgo/teams/internal/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Load the team store and print every team",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		ctx := cmd.Context()
		store, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		teams := registry.New(registry.Options{Store: store, Log: zap.NewNop()})
		rep := teams.Load(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "registry %s\n", teams.ID())
		for _, t := range teams.Teams() {
			fmt.Fprintf(out, "%-6s %s  %q  members=%d created=%s\n",
				t.Type(), t.ID(), t.DisplayName(), t.MemberCount(), t.CreatedAt().Format(time.RFC3339))
			for _, m := range t.Members() {
				fmt.Fprintf(out, "         %-7s %s\n", t.RankOf(m), m)
			}
		}
		for _, f := range rep.Failures {
			fmt.Fprintf(out, "skipped: %v\n", f)
		}
		return nil
	},
}
