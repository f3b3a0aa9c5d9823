package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"emoeval/internal/spec"
)

// SelectTasks returns the tasks named in ids, in config order. No ids selects
// every task.
func SelectTasks(cfg spec.Config, ids []string) ([]spec.TaskConfig, error) {
	wanted := lo.Uniq(lo.FilterMap(ids, func(id string, _ int) (string, bool) {
		id = strings.TrimSpace(id)
		return id, id != ""
	}))
	if len(wanted) == 0 {
		return append([]spec.TaskConfig(nil), cfg.Tasks...), nil
	}

	known := lo.Map(cfg.Tasks, func(task spec.TaskConfig, _ int) string { return task.ID })
	if unknown, _ := lo.Difference(wanted, known); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown task ids: %s", strings.Join(unknown, ", "))
	}
	return lo.Filter(cfg.Tasks, func(task spec.TaskConfig, _ int) bool {
		return lo.Contains(wanted, task.ID)
	}), nil
}
