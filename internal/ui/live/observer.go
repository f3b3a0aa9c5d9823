package live

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"emoeval/internal/runner"
)

// Controller runs the live UI and implements runner.RunObserver.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
	interrupt func()
}

// Start launches a live UI controller that writes to stdout. interrupt is
// called when the user presses ctrl+c inside the UI.
func Start(stdout io.Writer, opts Options, interrupt func()) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 1024)
	program := tea.NewProgram(NewModel(events, opts), tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:    events,
		program:   program,
		done:      make(chan struct{}),
		interrupt: interrupt,
	}
	go func() {
		_, err := program.Run()
		if errors.Is(err, tea.ErrInterrupted) && controller.interrupt != nil {
			controller.interrupt()
		}
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(runID string, dataset string) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Dataset: dataset})
}

// OnTaskStart forwards task start events to the UI.
func (c *Controller) OnTaskStart(taskID string, model string, trials int) {
	c.send(Event{Kind: EventTaskStart, TaskID: taskID, Model: model, Trials: trials})
}

// OnTrialEvent forwards trial status updates to the UI.
func (c *Controller) OnTrialEvent(event runner.TrialEvent) {
	c.send(Event{Kind: EventTrial, Trial: event})
}

// OnTaskEnd forwards task completion events to the UI.
func (c *Controller) OnTaskEnd(result runner.TaskResult) {
	accuracy := ""
	if acc := result.Summary.Accuracy; acc != nil {
		accuracy = fmt.Sprintf("%.2f%%", acc.Percent)
	}
	c.send(Event{Kind: EventTaskEnd, TaskID: result.TaskID, Accuracy: accuracy})
}

// OnRunEnd forwards run completion events to the UI and closes it.
func (c *Controller) OnRunEnd(results runner.Results) {
	c.send(Event{Kind: EventRunEnd})
	c.Close()
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
