package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SnoozeScript/aies-lab/pipeline"
	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
	"github.com/SnoozeScript/aies-lab/report"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var plotPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one experiment from a YAML config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			res, err := pipeline.Run(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: kept %d of %d rows (dropped %d)\n",
				res.RunID, res.Clean.KeptRows, res.Clean.TotalRows, res.Clean.Dropped())
			if err := report.RenderComparison(out, res.Baseline, res.Mitigated); err != nil {
				return err
			}
			fmt.Fprintf(out, "selection-rate gap: baseline %.4f, mitigated %.4f (train %.4f)\n",
				res.BaselineGap, res.MitigatedGap, res.TrainGap)
			if !res.Converged {
				fmt.Fprintf(out, "warning: mitigation did not reach epsilon %.4f after %d rounds\n",
					cfg.Epsilon, res.Rounds)
			}

			if plotPath != "" {
				err := report.PlotSelectionRates(plotPath,
					report.NamedFrame{Name: "baseline", Frame: res.Baseline},
					report.NamedFrame{Name: "mitigated", Frame: res.Mitigated},
				)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "chart written to %s\n", plotPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "experiment config file (YAML)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write a selection-rate bar chart to this path")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func loadConfig(path string) (pipeline.Config, error) {
	var cfg pipeline.Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, scierrors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, scierrors.Wrap(err, "parse config")
	}
	return cfg, nil
}
