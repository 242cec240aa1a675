package tracing

import (
	"context"
	"fmt"

	"github.com/sarchlab/dasim/datarecording"
)

// A Report is what a recording holds about one run.
type Report struct {
	Run       RunRow
	Rounds    []RoundRow
	Decisions []DecisionRow
	Nodes     []NodeRow

	// Messages is the number of recorded messages. It is zero if the run was
	// recorded without messages.
	Messages int
}

// ListRuns returns the runs in a recording.
func ListRuns(
	ctx context.Context,
	r datarecording.DataReader,
) ([]RunRow, error) {
	return datarecording.Read[RunRow](ctx, r, RunTable,
		datarecording.QueryParams{})
}

// ReadReport reads back what a DBTracer recorded about a run. An empty runID
// selects the only run of the recording.
func ReadReport(
	ctx context.Context,
	r datarecording.DataReader,
	runID string,
) (*Report, error) {
	run, err := findRun(ctx, r, runID)
	if err != nil {
		return nil, err
	}

	byRun := datarecording.QueryParams{Where: "RunID = ?", Args: []any{run.RunID}}
	report := &Report{Run: run}

	byRun.OrderBy = "Round"
	report.Rounds, err = datarecording.Read[RoundRow](ctx, r, RoundTable, byRun)
	if err != nil {
		return nil, err
	}

	byRun.OrderBy = "Round, Node"
	report.Decisions, err = datarecording.Read[DecisionRow](
		ctx, r, DecisionTable, byRun)
	if err != nil {
		return nil, err
	}

	byRun.OrderBy = "Node"
	report.Nodes, err = datarecording.Read[NodeRow](ctx, r, NodeTable, byRun)
	if err != nil {
		return nil, err
	}

	report.Messages, err = r.Count(ctx, MsgTable, byRun)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func findRun(
	ctx context.Context,
	r datarecording.DataReader,
	runID string,
) (RunRow, error) {
	params := datarecording.QueryParams{}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	runs, err := datarecording.Read[RunRow](ctx, r, RunTable, params)
	if err != nil {
		return RunRow{}, err
	}

	switch {
	case len(runs) == 1:
		return runs[0], nil
	case len(runs) == 0 && runID != "":
		return RunRow{}, fmt.Errorf("no run %s in the recording", runID)
	case len(runs) == 0:
		return RunRow{}, fmt.Errorf("the recording holds no finished run")
	default:
		return RunRow{}, fmt.Errorf(
			"the recording holds %d runs, select one by its ID", len(runs))
	}
}
