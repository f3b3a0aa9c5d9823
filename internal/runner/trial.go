package runner

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"emoeval/internal/dataset"
	"emoeval/internal/inference"
	"emoeval/internal/parse"
	"emoeval/internal/record"
)

// taskRunner executes the trials of one task.
type taskRunner struct {
	plan     taskPlan
	client   inference.Client
	observer RunObserver
	logger   *zap.Logger
	now      func() time.Time

	verbose       bool
	verboseWriter io.Writer
	noColor       bool

	total    int
	finished atomic.Int64
}

// runTrial makes every call of the task for one trial. Call failures are
// carried by the record. It reports false when ctx ends before every call
// has answered; such a trial is dropped rather than counted as failed.
func (r *taskRunner) runTrial(ctx context.Context, trial dataset.Trial, p *pacer) (record.Result, bool) {
	result := record.Result{
		ID:     uuid.NewString(),
		Trial:  trial,
		Calls:  make([]record.Call, 0, len(r.plan.Calls)),
		Fields: make(parse.Fields, 0, len(r.plan.Fields)),
	}
	for i, call := range r.plan.Calls {
		if ctx.Err() != nil {
			r.logInterrupted(trial, call.ID)
			return record.Result{}, false
		}
		r.emit(trial, TrialEvent{Type: TrialCalling, CallID: call.ID})
		if err := p.before(ctx); err != nil {
			r.logger.Warn("rate limiter wait failed", zap.String("task", r.plan.Task.ID), zap.Error(err))
		}
		resp := r.client.Invoke(ctx, inference.Request{
			FunctionName:    call.FunctionName,
			DeveloperPrompt: call.Prompt,
			UserPrompt:      trial.Sentence,
			Model:           r.plan.Model,
			Temperature:     r.plan.Temperature,
		})
		if !resp.OK() && ctx.Err() != nil {
			r.logInterrupted(trial, call.ID)
			return record.Result{}, false
		}
		result.Calls = append(result.Calls, record.Call{ID: call.ID, Response: resp})
		result.Fields = append(result.Fields, resp.Fields(call.Parser)...)
		result.TotalSeconds += resp.ElapsedSeconds
		r.logCall(result.ID, trial, call.ID, resp)
		r.emit(trial, TrialEvent{
			Type:    TrialCallDone,
			CallID:  call.ID,
			Status:  resp.StatusLabel(),
			Elapsed: resp.Elapsed(),
			Error:   resp.Error,
		})
		if err := p.after(ctx); err != nil && i < len(r.plan.Calls)-1 {
			r.logInterrupted(trial, r.plan.Calls[i+1].ID)
			return record.Result{}, false
		}
	}
	r.finish(trial, result)
	return result, true
}

func (r *taskRunner) logInterrupted(trial dataset.Trial, callID string) {
	r.logger.Info("trial interrupted",
		zap.String("task", r.plan.Task.ID),
		zap.Int("trial", trial.Index),
		zap.String("call", callID),
	)
}

func (r *taskRunner) finish(trial dataset.Trial, result record.Result) {
	done := int(r.finished.Add(1))
	eventType, predicted := r.classify(result)
	r.emit(trial, TrialEvent{
		Type:      eventType,
		Predicted: predicted,
		Elapsed:   time.Duration(result.TotalSeconds * float64(time.Second)),
	})
	logVerbose(r.verbose, r.verboseWriter, r.noColor, trialStyle(eventType),
		"%s %s [%s] %s | %s | %.3fs",
		r.plan.Task.ID,
		formatProgress(done, r.total),
		trial.TrueLabel,
		previewSentence(trial.Sentence),
		formatFields(r.plan.Fields, result),
		result.TotalSeconds,
	)
}

// classify maps a finished record to its terminal event.
func (r *taskRunner) classify(result record.Result) (TrialEventType, string) {
	if result.Failed() {
		return TrialFailed, ""
	}
	if r.plan.AccuracyField == "" {
		return TrialDone, ""
	}
	value, ok := result.Field(r.plan.AccuracyField)
	if !ok {
		return TrialParseError, ""
	}
	predicted, ok := value.Label()
	if !ok {
		return TrialParseError, ""
	}
	if predicted == result.TrueLabel {
		return TrialCorrect, predicted
	}
	return TrialIncorrect, predicted
}

func (r *taskRunner) emit(trial dataset.Trial, event TrialEvent) {
	event.TaskID = r.plan.Task.ID
	event.TrialIndex = trial.Index
	event.Character = trial.Character
	event.TrueLabel = trial.TrueLabel
	event.Sentence = trial.Sentence
	event.EmittedAt = r.now()
	r.observer.OnTrialEvent(event)
}

func (r *taskRunner) logCall(recordID string, trial dataset.Trial, callID string, resp inference.Response) {
	fields := []zap.Field{
		zap.String("task", r.plan.Task.ID),
		zap.String("record", recordID),
		zap.Int("trial", trial.Index),
		zap.String("call", callID),
		zap.String("outcome", string(resp.Outcome)),
		zap.String("status", resp.StatusLabel()),
		zap.Float64("elapsed_seconds", resp.ElapsedSeconds),
	}
	if resp.OK() {
		r.logger.Info("inference call", fields...)
		return
	}
	r.logger.Warn("inference call failed", append(fields, zap.String("error", resp.RawText()))...)
}
