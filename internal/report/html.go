package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"

	"github.com/limaJavier/fjsp/internal/batch"
)

// Family classifies an instance by name: the Fattahi set splits into small (sfjs) and medium (mfjs)
// instances, everything else is "other"
func Family(instance string) string {
	name := strings.ToLower(instance)
	switch {
	case strings.Contains(name, "mfj"):
		return "mfjs"
	case strings.Contains(name, "sfj"):
		return "sfjs"
	default:
		return "other"
	}
}

// WriteHTML renders a page with solve time, gap and makespan per instance and the average time and gap
// per family. Only rows with both a makespan and a gap are charted
func WriteHTML(w io.Writer, rows []batch.Row) error {
	charted := lo.Filter(rows, func(row batch.Row, _ int) bool {
		return !row.Failed() && row.Makespan != nil && row.Gap != nil
	})
	instances := lo.Map(charted, func(row batch.Row, _ int) string { return row.Instance })

	timeBar := charts.NewBar()
	timeBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Solve time per instance"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Instance"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time (s)"}),
	)
	timeBar.SetXAxis(instances).AddSeries("Time", lo.Map(charted, func(row batch.Row, _ int) opts.BarData {
		return opts.BarData{Value: row.Time.Seconds()}
	}))

	gapBar := charts.NewBar()
	gapBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Optimality gap per instance"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Instance"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gap"}),
	)
	gapBar.SetXAxis(instances).AddSeries("Gap", lo.Map(charted, func(row batch.Row, _ int) opts.BarData {
		return opts.BarData{Value: *row.Gap}
	}))

	makespanLine := charts.NewLine()
	makespanLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Makespan per instance"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Instance"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cmax"}),
	)
	makespanLine.SetXAxis(instances).AddSeries("Makespan", lo.Map(charted, func(row batch.Row, _ int) opts.LineData {
		return opts.LineData{Value: *row.Makespan}
	}))

	families := lo.GroupBy(charted, func(row batch.Row) string { return Family(row.Instance) })
	names := lo.Keys(families)
	slices.Sort(names)
	average := func(rows []batch.Row, value func(batch.Row) float64) float64 {
		return lo.SumBy(rows, value) / float64(len(rows))
	}

	familyBar := charts.NewBar()
	familyBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Averages per instance family"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Family"}),
	)
	familyBar.SetXAxis(names).
		AddSeries("Time (s)", lo.Map(names, func(name string, _ int) opts.BarData {
			return opts.BarData{Value: average(families[name], func(row batch.Row) float64 { return row.Time.Seconds() })}
		})).
		AddSeries("Gap", lo.Map(names, func(name string, _ int) opts.BarData {
			return opts.BarData{Value: average(families[name], func(row batch.Row) float64 { return *row.Gap })}
		}))

	page := components.NewPage()
	page.AddCharts(timeBar, gapBar, makespanLine, familyBar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}
