package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfold/stratsim/backtest"
	"github.com/quantfold/stratsim/config"
	"github.com/quantfold/stratsim/frame"
	"github.com/quantfold/stratsim/journal"
)

func newRunCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the configured backtest over its parameter grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rc.ConfigPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.LoadFromFile(rc.ConfigPath)
			if err != nil {
				return err
			}
			log, err := rc.Logger()
			if err != nil {
				return err
			}

			data, err := frame.ReadCSV(cfg.Data.Path)
			if err != nil {
				return err
			}

			strat, err := cfg.BuildStrategy()
			if err != nil {
				return err
			}

			runner := &backtest.Runner{
				Data:       data,
				Assets:     cfg.BuildAssets(),
				Strategies: []backtest.Strategy{strat},
				Books:      cfg.BuildBooks(),
				Logger:     log,
			}

			j, err := openJournal(cfg, rc)
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
			}

			results := runner.RunBatch(cfg.ParamSets(), cfg.Run.Workers)

			var failed int
			for _, br := range results {
				if br.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  params=%v: %v\n", br.Params, br.Err)
					continue
				}
				if j != nil {
					if err := j.RecordResult(br.Result); err != nil {
						return fmt.Errorf("journal run %s: %w", br.Result.RunID, err)
					}
				}
				printSummary(cmd, br)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d configurations failed", failed, len(results))
			}
			return nil
		},
	}
}

func openJournal(cfg *config.Config, rc *RootConfig) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return nil, nil
	case "sqlite":
		path := cfg.Journal.DBPath
		if path == "" {
			path = rc.DBPath
		}
		return journal.NewSQLite(path)
	case "csv":
		return journal.NewCSV(cfg.Journal.OrdersFile, cfg.Journal.HistoryFile)
	default:
		return nil, errors.New("unknown journal type " + cfg.Journal.Type)
	}
}

func printSummary(cmd *cobra.Command, br backtest.BatchResult) {
	res := br.Result
	fmt.Fprintf(cmd.OutOrStdout(), "OK    run=%s params=%v orders=%d\n",
		res.RunID, br.Params, len(res.Processed))
	for _, b := range res.Books {
		h := b.History()
		if h.NumRows() == 0 {
			continue
		}
		total, _ := h.Value(frame.F("total"), h.NumRows()-1)
		fmt.Fprintf(cmd.OutOrStdout(), "      book=%s cash=%.2f final_total=%.2f\n",
			b.Name, b.Cash, total)
	}
}
