package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/okian/simboard/internal/adapters/fixture"
	"github.com/okian/simboard/internal/domain/evaluation"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/ranking"
	"github.com/okian/simboard/internal/domain/types"

	"github.com/spf13/cobra"
)

// Output formats of the rank command.
const (
	outputTable = "table"
	outputJSON  = "json"
)

type rankOptions struct {
	simulation   string
	status       string
	strength     string
	minScore     string
	sort         string
	output       string
	summaryLimit int
}

// simulationView is one ranked simulation as printed by the rank command.
type simulationView struct {
	Simulation string            `json:"simulation"`
	Shown      int               `json:"shown"`
	Total      int               `json:"total"`
	Candidates []types.Candidate `json:"candidates"`
}

func newRankCmd() *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank FILE",
		Short: "Derive and rank the candidates of a fixture file",
		Long: "Rank reads a YAML fixture of raw candidates, derives their metrics and prints\n" +
			"each simulation's ranked view. Filter values follow the dashboard query:\n" +
			"unknown values mean \"all\" and an unknown sort falls back to score.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := fixture.LoadFile(args[0])
			if err != nil {
				return err
			}
			views := rankFixture(raws, opts)
			switch opts.output {
			case outputJSON:
				return writeViewsJSON(cmd.OutOrStdout(), views)
			case outputTable:
				return writeViewsTable(cmd.OutOrStdout(), views)
			default:
				return fmt.Errorf("unknown output %q: want %s or %s", opts.output, outputTable, outputJSON)
			}
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.simulation, "simulation", "", "only rank this simulation")
	f.StringVar(&opts.status, ranking.ParamStatus, "", "status filter: welcome, working, completed")
	f.StringVar(&opts.strength, ranking.ParamStrength, "", "strength tier filter: Exceptional, Strong, Proficient, Developing")
	f.StringVar(&opts.minScore, "min-score", "", "minimum overall score")
	f.StringVar(&opts.sort, ranking.ParamSort, string(ranking.SortScore), "sort key: score, recent, name")
	f.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	f.IntVar(&opts.summaryLimit, "summary-limit", evaluation.DefaultSummaryLimit, "rune length after which summaries are cut")
	return cmd
}

// query renders the flags the way the dashboard would send them.
func (o *rankOptions) query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set(ranking.ParamStatus, o.status)
	set(ranking.ParamStrength, o.strength)
	set(ranking.ParamMinScore, o.minScore)
	set(ranking.ParamSort, o.sort)
	return q
}

// rankFixture groups raws by simulation in first-seen order and ranks each group.
func rankFixture(raws []model.RawCandidate, opts *rankOptions) []simulationView {
	derived := evaluation.NewDeriver(evaluation.WithSummaryLimit(opts.summaryLimit)).DeriveAll(raws)

	var order []string
	groups := make(map[string][]model.DerivedCandidate)
	for _, c := range derived {
		if opts.simulation != "" && c.SimulationID != opts.simulation {
			continue
		}
		if _, ok := groups[c.SimulationID]; !ok {
			order = append(order, c.SimulationID)
		}
		groups[c.SimulationID] = append(groups[c.SimulationID], c)
	}
	if opts.simulation != "" && len(order) == 0 {
		order = append(order, opts.simulation)
	}

	filters, sortBy := ranking.ParseQuery(opts.query())
	views := make([]simulationView, 0, len(order))
	for _, sim := range order {
		v := ranking.Project(groups[sim], filters, sortBy)
		views = append(views, simulationView{
			Simulation: sim,
			Shown:      v.Shown,
			Total:      v.Total,
			Candidates: types.FromDerivedAll(v.Records),
		})
	}
	return views
}

func writeViewsJSON(w io.Writer, views []simulationView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func writeViewsTable(w io.Writer, views []simulationView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\t(%d of %d)\n", v.Simulation, v.Shown, v.Total)
		fmt.Fprintln(tw, "#\tID\tNAME\tSTATUS\tSCORE\tTIER\tTOP\tBOTTOM\tFLAGS")
		for n, c := range v.Candidates {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				n+1, c.AssessmentID, orDash(c.Name), c.Status,
				score(c.OverallScore), orDash(c.StrengthTier),
				dimName(c.TopDimension), dimName(c.BottomDimension), c.RedFlagCount)
		}
	}
	return tw.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func dimName(d *types.Dimension) string {
	if d == nil {
		return "-"
	}
	return d.Name
}
