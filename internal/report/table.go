package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/limaJavier/fjsp/internal/batch"
)

var csvHeader = []string{"instance", "jobs", "machines", "ops", "binary_vars", "continuous_vars", "constraints", "makespan", "gap", "time_s", "status", "error"}

// WriteCSV writes one record per row; values a row does not have are left empty
func WriteCSV(w io.Writer, rows []batch.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Instance,
			count(row.Jobs),
			count(row.Machines),
			count(row.Operations),
			count(row.Binary),
			count(row.Continuous),
			count(row.Constraints),
			optional(row.Makespan, formatFloat, ""),
			optional(row.Gap, formatFloat, ""),
			seconds(row),
			row.Status,
			row.Error,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown renders the rows as a pipe table; absent values show as "-" and decimals use four
// significant digits
func WriteMarkdown(w io.Writer, rows []batch.Row) error {
	var builder strings.Builder
	builder.WriteString("| Instance | J | M | Ops | Vars | Constraints | Makespan | Gap | Time (s) | Status |\n")
	builder.WriteString("|:--|--:|--:|--:|--:|--:|--:|--:|--:|:--|\n")

	for _, row := range rows {
		if row.Failed() {
			fmt.Fprintf(&builder, "| %v | - | - | - | - | - | ERROR: %v | - | - | %v |\n", escape(row.Instance), escape(row.Error), row.Status)
			continue
		}
		fmt.Fprintf(&builder, "| %v | %d | %d | %d | %d | %d | %v | %v | %v | %v |\n",
			escape(row.Instance),
			row.Jobs,
			row.Machines,
			row.Operations,
			row.Binary+row.Continuous,
			row.Constraints,
			optional(row.Makespan, significant, "-"),
			optional(row.Gap, significant, "-"),
			significant(row.Time.Seconds()),
			row.Status,
		)
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func significant(value float64) string {
	return fmt.Sprintf("%.4g", value)
}

func optional(value *float64, format func(float64) string, absent string) string {
	if value == nil {
		return absent
	}
	return format(*value)
}

func count(value int) string {
	if value == 0 {
		return ""
	}
	return strconv.Itoa(value)
}

func seconds(row batch.Row) string {
	if row.Failed() && row.Time == 0 {
		return ""
	}
	return formatFloat(row.Time.Seconds())
}

func escape(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", `\|`)
}
