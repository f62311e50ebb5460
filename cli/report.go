package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfold/stratsim/journal"
)

func newReportCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "List journaled runs, or one run's orders and book history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(rc.DBPath)
			if err != nil {
				return err
			}
			defer j.Close()

			if len(args) == 0 {
				runs, err := j.ListRuns()
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  orders=%d  params=%s\n",
						r.RunID, r.RecordedAt.Format("2006-01-02 15:04:05"), r.Processed, r.Params)
				}
				return nil
			}

			runID := args[0]
			orders, err := j.ListOrders(runID)
			if err != nil {
				return err
			}
			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-14s %-8s %s size=%g (%s)\n",
					o.Key, o.Status, o.Book, o.Asset, o.Size, o.SizeType)
			}
			return nil
		},
	}
	return cmd
}
