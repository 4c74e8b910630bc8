package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/formatter"
	"github.com/Katzler/shapeshifter/pkg/metrics"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		outFile string
		pushURL string
	)

	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate a schedule for the week",
		Long: `Fill every slot of the week from the agents' preferences, replacing any
schedule already in the file. Slots nobody can take stay empty.

Examples:
  shapeshifter generate team.json
  shapeshifter generate team.json --format csv
  shapeshifter generate team.json -o planned.json
  shapeshifter generate team.json --push-url http://pushgateway:9091`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			sched, err := opts.scheduler()
			if err != nil {
				return err
			}
			doc, err := opts.readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			result := sched.GenerateReport(doc.Agents)
			metrics.ObserveGeneration(len(doc.Agents), len(result.Unfilled), result.FairnessScore, time.Since(start))

			out, err := formatter.Schedule(format, opts.style(), doc.Agents, result.Schedule)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if format == formatter.FormatText {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d unfilled, fairness %.1f%%\n", len(result.Unfilled), result.FairnessScore)
			}

			if outFile != "" {
				doc.Schedule = result.Schedule
				data, err := exchange.Marshal(doc)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outFile, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outFile, err)
				}
				opts.log.Info("schedule saved", slog.String("path", outFile))
			}

			if pushURL != "" {
				if err := metrics.Push(pushURL, "shapeshifter_cli"); err != nil {
					opts.log.Warn("push metrics failed", slog.Any("error", err))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write the input with the generated schedule to this file")
	cmd.Flags().StringVar(&pushURL, "push-url", "", "Pushgateway URL to send run metrics to")
	return cmd
}
