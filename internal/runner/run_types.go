package runner

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"emoeval/internal/config"
	"emoeval/internal/inference"
	"emoeval/internal/parse"
	"emoeval/internal/spec"
)

// ClientFactory builds the inference client for a run.
type ClientFactory func(endpoint inference.Endpoint) (inference.Client, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RunDependencies allows injecting factories and clocks for a run.
type RunDependencies struct {
	ClientFactory ClientFactory
	RunID         func() (string, error)
	Now           func() time.Time
	Sleep         SleepFunc
	// Logger receives structured per-call events. Nil discards them.
	Logger *zap.Logger
}

// RunParams configures a run invocation.
type RunParams struct {
	// Root is the directory relative config paths resolve against.
	Root          string
	OutputDir     string
	TaskIDs       []string
	ModelOverride string
	// Limit truncates the trial list; zero keeps every trial.
	Limit         int
	Credentials   config.Credentials
	Verbose       bool
	VerboseWriter io.Writer
	NoColor       bool
	Observer      RunObserver
	Deps          RunDependencies
}

// callPlan is one resolved call of a task.
type callPlan struct {
	ID           string
	FunctionName string
	Prompt       string
	Fallback     bool
	Parser       *parse.Parser
}

// taskPlan couples a task with its resolved model, prompts and parsers.
type taskPlan struct {
	Task          spec.TaskConfig
	Model         string
	Temperature   float64
	AccuracyField string
	Calls         []callPlan
	Fields        []parse.FieldSpec
}

func (p taskPlan) callIDs() []string {
	ids := make([]string, 0, len(p.Calls))
	for _, call := range p.Calls {
		ids = append(ids, call.ID)
	}
	return ids
}
