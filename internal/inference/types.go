package inference

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"emoeval/internal/parse"
)

// DefaultTimeout bounds a single inference call.
const DefaultTimeout = 30 * time.Second

// Outcome classifies a call. Every call has exactly one outcome.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeHTTPError Outcome = "http_error"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeTransport Outcome = "transport_error"
)

// Request is one prompt sent to a model.
type Request struct {
	FunctionName    string
	DeveloperPrompt string
	UserPrompt      string
	Model           string
	Temperature     float64
}

// Response is the classified result of one call.
type Response struct {
	Outcome        Outcome `json:"outcome"`
	Text           string  `json:"text,omitempty"`
	StatusCode     int     `json:"status_code,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

// Client performs inference calls. Implementations never return an error:
// failures are reported through the response outcome.
type Client interface {
	Invoke(ctx context.Context, req Request) Response
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) Response

// Invoke calls f.
func (f ClientFunc) Invoke(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// OK reports whether the call succeeded.
func (r Response) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Sentinel returns the failure marker for failed calls and "" otherwise.
func (r Response) Sentinel() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return ""
	case OutcomeHTTPError:
		return parse.HTTPErrorPrefix + strconv.Itoa(r.StatusCode)
	case OutcomeTimeout:
		return parse.SentinelTimeout
	default:
		if r.Error == "" {
			return parse.SentinelError
		}
		return parse.ErrorPrefix + r.Error
	}
}

// RawText is the text recorded for the call: the answer, or the failure marker.
func (r Response) RawText() string {
	if r.OK() {
		return r.Text
	}
	return r.Sentinel()
}

// StatusLabel is the status column value: the HTTP code, TIMEOUT or ERROR.
func (r Response) StatusLabel() string {
	switch r.Outcome {
	case OutcomeSuccess, OutcomeHTTPError:
		return strconv.Itoa(r.StatusCode)
	case OutcomeTimeout:
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// Elapsed returns the recorded duration.
func (r Response) Elapsed() time.Duration {
	return time.Duration(r.ElapsedSeconds * float64(time.Second))
}

// Fields parses the response with p; failed calls mark every field as an error.
func (r Response) Fields(p *parse.Parser) parse.Fields {
	if !r.OK() {
		return p.Fail(r.Sentinel())
	}
	return p.Parse(r.Text)
}

func success(text string, status int, elapsed time.Duration) Response {
	return Response{Outcome: OutcomeSuccess, Text: text, StatusCode: status, ElapsedSeconds: elapsed.Seconds()}
}

func httpError(status int, elapsed time.Duration) Response {
	return Response{Outcome: OutcomeHTTPError, StatusCode: status, ElapsedSeconds: elapsed.Seconds()}
}

func timedOut(budget time.Duration) Response {
	return Response{Outcome: OutcomeTimeout, ElapsedSeconds: budget.Seconds()}
}

func transportError(err error) Response {
	return Response{Outcome: OutcomeTransport, Error: err.Error()}
}

// classifyError maps a failed call to a timeout or a transport error. Only
// the per-call deadline counts as a timeout; cancellation of the parent
// context is a transport error.
func classifyError(parent, call context.Context, err error, budget time.Duration) Response {
	if parent.Err() == nil {
		if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return timedOut(budget)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return timedOut(budget)
		}
	}
	return transportError(err)
}
