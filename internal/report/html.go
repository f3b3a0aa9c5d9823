package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a-h/templ"

	"emoeval/internal/aggregate"
	"emoeval/internal/runner"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin:0.5rem 0 1.5rem}
th,td{border:1px solid #ccc;padding:0.25rem 0.6rem;text-align:left}
th{background:#f3f3f3}
.bar{background:#4a7bd0;height:0.8rem;display:inline-block}
.muted{color:#777}`

// RunReport renders a run as a self-contained HTML page.
func RunReport(results runner.Results) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &htmlWriter{w: w}
		p.raw("<!doctype html>\n<html><head><meta charset=\"utf-8\">")
		p.tag("title", "Emotion eval "+results.RunID)
		p.raw("<style>" + pageStyle + "</style></head><body>")
		p.tag("h1", "Run "+results.RunID)
		p.raw("<p>")
		p.text("Dataset " + results.Dataset + " · endpoint " + results.Endpoint.Kind + " " + results.Endpoint.URL)
		if results.Cancelled {
			p.raw(" <strong>cancelled</strong>")
		}
		p.raw("</p>")
		for _, task := range results.Tasks {
			if err := ctx.Err(); err != nil {
				return err
			}
			writeTaskHTML(p, task)
		}
		p.raw("</body></html>\n")
		return p.err
	})
}

// RenderHTML renders the run report into a string.
func RenderHTML(ctx context.Context, results runner.Results) (string, error) {
	var builder strings.Builder
	if err := RunReport(results).Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// WriteHTML renders the run report to path.
func WriteHTML(ctx context.Context, path string, results runner.Results) error {
	html, err := RenderHTML(ctx, results)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeTaskHTML(p *htmlWriter, task runner.TaskResult) {
	s := task.Summary
	p.tag("h2", fmt.Sprintf("Task %s · %s · temperature %.2f", task.TaskID, task.Model, task.Temperature))
	p.tag("p", fmt.Sprintf("%d of %d trials processed", s.Total, task.Planned))

	if acc := s.Accuracy; acc != nil {
		p.tag("h3", acc.Field+" accuracy")
		p.tag("p", fmt.Sprintf("Accuracy %s over %d valid predictions; valid rate %s of %d trials",
			formatPercent(acc.Percent), acc.Valid, formatPercent(acc.ValidRate), acc.Total))
		rows := make([][]string, 0, len(acc.PerLabel))
		for _, label := range acc.PerLabel {
			rows = append(rows, []string{label.Label, formatPercent(label.Percent), fmt.Sprint(label.Correct), fmt.Sprint(label.Count)})
		}
		p.table([]string{"label", "accuracy", "correct", "count"}, rows)
		rows = rows[:0]
		for _, pair := range acc.Confusion {
			rows = append(rows, []string{pair.True, pair.Predicted, fmt.Sprint(pair.Count)})
		}
		if len(rows) > 0 {
			p.tag("h4", "Top confusion pairs")
			p.table([]string{"true", "predicted", "count"}, rows)
		}
	}

	p.tag("h3", "Latency")
	rows := make([][]string, 0, len(s.Latency))
	for _, lat := range s.Latency {
		rows = append(rows, []string{
			lat.Name, fmt.Sprint(lat.Count),
			formatSeconds(lat.Mean), formatSeconds(lat.Min), formatSeconds(lat.Max), formatSeconds(lat.Median),
			formatSeconds(lat.P90), formatSeconds(lat.P95), formatSeconds(lat.P99),
		})
	}
	p.table([]string{"call", "n", "mean", "min", "max", "median", "p90", "p95", "p99"}, rows)

	for _, ord := range s.Ordinal {
		p.tag("h3", ord.Field+" distribution")
		writeBars(p, ord.Distribution)
	}
	for _, num := range s.Numeric {
		writeNumericHTML(p, num)
	}

	p.tag("h3", "Errors")
	rows = rows[:0]
	for _, fe := range s.Errors {
		keys := make([]string, 0, len(fe.Breakdown))
		for _, entry := range fe.Breakdown {
			keys = append(keys, fmt.Sprintf("%s × %d", entry.Key, entry.Count))
		}
		rows = append(rows, []string{fe.Field, fmt.Sprint(fe.Failed), formatPercent(fe.Rate), strings.Join(keys, "; ")})
	}
	p.table([]string{"field", "failed", "rate", "breakdown"}, rows)
}

func writeNumericHTML(p *htmlWriter, num aggregate.NumericSummary) {
	p.tag("h3", num.Field+" statistics")
	if num.Count == 0 {
		p.raw(`<p class="muted">`)
		p.text(fmt.Sprintf("No valid values (%d failed)", num.Failed))
		p.raw("</p>")
		return
	}
	prec := num.Precision
	p.table(
		[]string{"n", "failed", "mean", "min", "max", "median", "std"},
		[][]string{{
			fmt.Sprint(num.Count), fmt.Sprint(num.Failed),
			formatNumber(num.Mean, prec), formatNumber(num.Min, prec), formatNumber(num.Max, prec),
			formatNumber(num.Median, prec), formatStd(num.Std, prec),
		}},
	)
	if len(num.ByLabel) > 0 {
		rows := make([][]string, 0, len(num.ByLabel))
		for _, label := range num.ByLabel {
			rows = append(rows, []string{label.Label, formatNumber(label.Mean, prec), fmt.Sprint(label.Count)})
		}
		p.table([]string{"label", "mean", "n"}, rows)
	}
	if len(num.Histogram) > 0 {
		buckets := make([]aggregate.Count, 0, len(num.Histogram))
		for _, bin := range num.Histogram {
			buckets = append(buckets, aggregate.Count{
				Key:   formatNumber(bin.Lower, prec) + " – " + formatNumber(bin.Upper, prec),
				Count: bin.Count,
			})
		}
		writeBars(p, buckets)
	}
}

// writeBars renders counts as a table of horizontal bars scaled to the largest count.
func writeBars(p *htmlWriter, counts []aggregate.Count) {
	peak := 0
	for _, c := range counts {
		peak = max(peak, c.Count)
	}
	p.raw("<table><tbody>")
	for _, c := range counts {
		width := 0
		if peak > 0 {
			width = c.Count * 300 / peak
		}
		p.raw("<tr><td>")
		p.text(c.Key)
		p.raw("</td><td>")
		p.text(fmt.Sprint(c.Count))
		p.raw(fmt.Sprintf(`</td><td><span class="bar" style="width:%dpx"></span></td></tr>`, width))
	}
	p.raw("</tbody></table>")
}

// htmlWriter writes escaped markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (p *htmlWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *htmlWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *htmlWriter) tag(name, content string) {
	p.raw("<" + name + ">")
	p.text(content)
	p.raw("</" + name + ">")
}

func (p *htmlWriter) table(header []string, rows [][]string) {
	p.raw("<table><thead><tr>")
	for _, h := range header {
		p.tag("th", h)
	}
	p.raw("</tr></thead><tbody>")
	for _, row := range rows {
		p.raw("<tr>")
		for _, cell := range row {
			p.tag("td", cell)
		}
		p.raw("</tr>")
	}
	p.raw("</tbody></table>")
}
