package report

import (
	"fmt"

	"emoeval/internal/aggregate"
	"emoeval/internal/config"
	"emoeval/internal/parse"
	"emoeval/internal/record"
	"emoeval/internal/runner"
	"emoeval/internal/spec"
)

// Reparse rebuilds every record's fields from its stored raw responses using
// the field definitions in cfg. Tasks no longer present in cfg keep their
// stored fields. Summaries are recomputed.
func Reparse(results runner.Results, cfg spec.Config) (runner.Results, error) {
	catalog := config.NewFieldCatalog(cfg)
	out := results
	out.Tasks = make([]runner.TaskResult, 0, len(results.Tasks))
	for _, task := range results.Tasks {
		taskCfg, ok := findTask(cfg, task.TaskID)
		if !ok {
			out.Tasks = append(out.Tasks, task)
			continue
		}
		reparsed, err := reparseTask(task, taskCfg, catalog)
		if err != nil {
			return runner.Results{}, fmt.Errorf("task %q: %w", task.TaskID, err)
		}
		if taskCfg.AccuracyField != "" {
			reparsed.AccuracyField = taskCfg.AccuracyField
		}
		out.Tasks = append(out.Tasks, reparsed)
	}
	return Resummarize(out, cfg.Report.TopK), nil
}

func reparseTask(task runner.TaskResult, taskCfg spec.TaskConfig, catalog config.FieldCatalog) (runner.TaskResult, error) {
	parsers := make(map[string]*parse.Parser, len(taskCfg.Calls))
	var fields []parse.FieldSpec
	for _, call := range taskCfg.Calls {
		specs, err := catalog.Expand(call.Fields)
		if err != nil {
			return runner.TaskResult{}, fmt.Errorf("call %q: %w", call.ID, err)
		}
		parser, err := parse.New(specs)
		if err != nil {
			return runner.TaskResult{}, fmt.Errorf("call %q: %w", call.ID, err)
		}
		parsers[call.ID] = parser
		fields = append(fields, specs...)
	}

	out := task
	out.Fields = fields
	out.Records = make([]record.Result, 0, len(task.Records))
	for _, rec := range task.Records {
		updated := rec
		updated.Fields = nil
		for _, call := range taskCfg.Calls {
			stored, ok := rec.Call(call.ID)
			if !ok {
				updated.Fields = append(updated.Fields, parsers[call.ID].Fail("call not recorded")...)
				continue
			}
			updated.Fields = append(updated.Fields, stored.Response.Fields(parsers[call.ID])...)
		}
		out.Records = append(out.Records, updated)
	}
	return out, nil
}

// Resummarize recomputes every task summary from its records.
func Resummarize(results runner.Results, topK int) runner.Results {
	for i, task := range results.Tasks {
		results.Tasks[i].Summary = aggregate.Summarize(task.Records, task.SummaryOptions(topK))
	}
	return results
}

func findTask(cfg spec.Config, id string) (spec.TaskConfig, bool) {
	for _, task := range cfg.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return spec.TaskConfig{}, false
}
