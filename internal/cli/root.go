// Package cli implements the shapeshifter command line: offline generation,
// coverage and hours reports over an exported workspace file.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Katzler/shapeshifter/pkg/config"
	"github.com/Katzler/shapeshifter/pkg/exchange"
	"github.com/Katzler/shapeshifter/pkg/formatter"
	"github.com/Katzler/shapeshifter/pkg/logging"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/spf13/cobra"
)

var Version = "dev"

// options are the persistent flags shared by every subcommand.
type options struct {
	format      string
	color       bool
	weightsFile string
	logLevel    string

	log *slog.Logger
}

func (o *options) style() formatter.Style {
	if o.color {
		return formatter.Color()
	}
	return formatter.Plain
}

func (o *options) outputFormat() (formatter.Format, error) {
	return formatter.ParseFormat(o.format)
}

func (o *options) scheduler() (*scheduler.Scheduler, error) {
	if o.weightsFile == "" {
		return scheduler.New(scheduler.DefaultWeights()), nil
	}
	w, err := config.LoadWeights(o.weightsFile)
	if err != nil {
		return nil, err
	}
	return scheduler.New(w), nil
}

// readDocument loads an exported workspace file; "-" reads stdin.
func (o *options) readDocument(cmd *cobra.Command, path string) (exchange.Document, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return exchange.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	doc, rep, err := exchange.ParseWithReport(data)
	if err != nil {
		return exchange.Document{}, err
	}
	if rep.DroppedAgents > 0 || rep.DefaultedSlots > 0 || rep.DroppedAssignments > 0 {
		o.log.Warn("input repaired",
			slog.Int("dropped_agents", rep.DroppedAgents),
			slog.Int("defaulted_slots", rep.DefaultedSlots),
			slog.Int("dropped_assignments", rep.DroppedAssignments),
		)
	}
	return doc, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "shapeshifter",
		Short: "Weekly shift coverage planning",
		Long: `shapeshifter plans a week of five daily shifts for a team of agents.

Every command reads a workspace export (the JSON file downloaded from the
API's export endpoint). Use "-" to read it from stdin.

Examples:
  shapeshifter generate team.json                 # Fill the week
  shapeshifter generate team.json -o planned.json # Save the result
  shapeshifter coverage team.json --color         # Where are the gaps?
  shapeshifter validate team.json --agent a1 --day mon --shift s5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = logging.New(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or csv")
	cmd.PersistentFlags().BoolVar(&opts.color, "color", false, "Color text output")
	cmd.PersistentFlags().StringVar(&opts.weightsFile, "weights", "", "YAML file of generator weights")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newCoverageCmd(opts),
		newHoursCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shapeshifter version %s\n", Version)
		},
	}
}
