package cli

import (
	"fmt"

	"github.com/Katzler/shapeshifter/pkg/coverage"
	"github.com/Katzler/shapeshifter/pkg/formatter"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/spf13/cobra"
)

func newCoverageCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <file>",
		Short: "Show how many agents can work each slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			doc, err := opts.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := formatter.Coverage(format, opts.style(), coverage.Calculate(doc.Agents))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newHoursCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hours <file>",
		Short: "Compare scheduled hours with each agent's contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			doc, err := opts.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := formatter.Hours(format, opts.style(), scheduler.HoursSummary(doc.Agents, doc.Schedule))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	var agentID, dayFlag, shiftFlag string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check whether an agent may take a slot",
		Long: `Check one assignment against the file's schedule. The slot's current
holder is ignored, so this answers "could the agent take over this slot".

Exits non-zero when the assignment is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := models.ParseDay(dayFlag)
			if err != nil {
				return err
			}
			shift, err := models.ParseShift(shiftFlag)
			if err != nil {
				return err
			}
			doc, err := opts.readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			var agent *models.Agent
			for i := range doc.Agents {
				if doc.Agents[i].ID == agentID {
					agent = &doc.Agents[i]
					break
				}
			}
			if agent == nil {
				return fmt.Errorf("agent %q not found", agentID)
			}

			rest := doc.Schedule.With(day, shift, models.Unassigned)
			v := scheduler.ValidateAssignment(*agent, day, shift, rest)
			slot := models.Slot{Day: day, Shift: shift}
			if !v.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "%s cannot take %s: %s\n", agent.Name, slot, v.Reason.Label())
				return v.Err()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s can take %s\n", agent.Name, slot)
			return nil
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "Agent id")
	cmd.Flags().StringVar(&dayFlag, "day", "", "Day: mon..sun")
	cmd.Flags().StringVar(&shiftFlag, "shift", "", "Shift: s1..s5")
	_ = cmd.MarkFlagRequired("agent")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("shift")
	return cmd
}
