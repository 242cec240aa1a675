package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/dasim/datarecording"
	"github.com/sarchlab/dasim/tracing"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <recording.sqlite3>",
		Short: "Summarize a recorded run.",
		Long: `Report reads a database written by "dasim run --record" and ` +
			`prints the outcome of the run, its rounds and the decisions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			f := cmd.Flags()
			ctx := cmd.Context()

			if list, _ := f.GetBool("list"); list {
				runs, err := tracing.ListRuns(ctx, reader)
				if err != nil {
					return err
				}

				return printRuns(cmd.OutOrStdout(), runs)
			}

			runID, _ := f.GetString("run")

			report, err := tracing.ReadReport(ctx, reader, runID)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)

			return nil
		},
	}

	reportCmd.Flags().String("run", "", "ID of the run to report.")
	reportCmd.Flags().Bool("list", false, "List the runs in the recording.")

	return reportCmd
}

func printRuns(w io.Writer, runs []tracing.RunRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tALGORITHM\tMODEL\tROUNDS\tTERMINATED")

	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n",
			r.RunID, r.Algorithm, r.Model, r.Rounds, r.Terminated)
	}

	return tw.Flush()
}

func printReport(w io.Writer, report *tracing.Report) {
	run := report.Run

	fmt.Fprintf(w, "Run:        %s\n", run.RunID)
	fmt.Fprintf(w, "Algorithm:  %s\n", run.Algorithm)
	fmt.Fprintf(w, "Model:      %s\n", run.Model)
	fmt.Fprintf(w, "Network:    %d nodes, %d edges\n", run.Nodes, run.Edges)
	fmt.Fprintf(w, "Rounds:     %d\n", run.Rounds)
	fmt.Fprintf(w, "Messages:   %d", run.Messages)

	if report.Messages == 0 && run.Messages > 0 {
		fmt.Fprint(w, " (not recorded)")
	}

	fmt.Fprintf(w, "\nTerminated: %t\n", run.Terminated)

	if run.Error != "" {
		fmt.Fprintf(w, "Error:      %s\n", run.Error)
	}

	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tMESSAGES\tSTEPPED\tBLOCKED\tDECIDED\tHALTED")

	for _, r := range report.Rounds {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\n",
			r.Round, r.Messages, r.Stepped, r.Blocked, r.Decided, r.Halted)
	}

	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tDECIDED IN\tOUTPUT")

	for _, d := range report.Decisions {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", d.Node, d.Round, d.Output)
	}

	tw.Flush()
}
