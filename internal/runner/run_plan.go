package runner

import (
	"fmt"
	"strings"

	"emoeval/internal/config"
	"emoeval/internal/parse"
	"emoeval/internal/spec"
)

// planTasks resolves the selected tasks into prompts and compiled parsers.
// Every failure here is fatal and happens before the first trial.
func planTasks(cfg spec.Config, root string, taskIDs []string, modelOverride string) ([]taskPlan, error) {
	tasks, err := config.SelectTasks(cfg, taskIDs)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks configured")
	}
	catalog := config.NewFieldCatalog(cfg)
	plans := make([]taskPlan, 0, len(tasks))
	for _, task := range tasks {
		plan, err := planTask(task, root, catalog, modelOverride)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", task.ID, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func planTask(task spec.TaskConfig, root string, catalog config.FieldCatalog, modelOverride string) (taskPlan, error) {
	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = task.Model
	}
	temperature := config.DefaultTemperature
	if task.Temperature != nil {
		temperature = *task.Temperature
	}
	plan := taskPlan{
		Task:          task,
		Model:         model,
		Temperature:   temperature,
		AccuracyField: task.AccuracyField,
	}
	for _, call := range task.Calls {
		prompt, fallback, err := config.LoadPrompt(root, call)
		if err != nil {
			return taskPlan{}, fmt.Errorf("call %q: %w", call.ID, err)
		}
		fields, err := catalog.Expand(call.Fields)
		if err != nil {
			return taskPlan{}, fmt.Errorf("call %q: %w", call.ID, err)
		}
		parser, err := parse.New(fields)
		if err != nil {
			return taskPlan{}, fmt.Errorf("call %q: %w", call.ID, err)
		}
		plan.Calls = append(plan.Calls, callPlan{
			ID:           call.ID,
			FunctionName: call.FunctionName,
			Prompt:       prompt,
			Fallback:     fallback,
			Parser:       parser,
		})
		plan.Fields = append(plan.Fields, fields...)
	}
	return plan, nil
}

func (p taskPlan) callInfo() []CallInfo {
	infos := make([]CallInfo, 0, len(p.Calls))
	for _, call := range p.Calls {
		infos = append(infos, CallInfo{ID: call.ID, FunctionName: call.FunctionName, PromptFallback: call.Fallback})
	}
	return infos
}
