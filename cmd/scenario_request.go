package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zoobzio/railz"
	"github.com/zoobzio/railz/setter"
)

// Request is the context of the request scenario. Options are applied
// through setters before validation runs.
type Request struct {
	Method  string
	Path    string
	Timeout time.Duration
	Retries int
	Err     error
}

// SetMethod sets the HTTP method; normalization upper-cases it later.
func (r *Request) SetMethod(m string) *Request {
	r.Method = m
	return r
}

// SetPath sets the request path.
func (r *Request) SetPath(p string) *Request {
	r.Path = p
	return r
}

// SetTimeout sets how long the request may take.
func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// SetRetries sets the retry count. Unlike the other setters it returns nothing.
func (r *Request) SetRetries(n int) {
	r.Retries = n
}

var (
	errBadMethod  = errors.New("unsupported method")
	errBadPath    = errors.New("path must be absolute")
	errBadTimeout = errors.New("timeout must be positive")
)

var (
	withMethod  = setter.For((*Request).SetMethod)
	withPath    = setter.For((*Request).SetPath)
	withTimeout = setter.For((*Request).SetTimeout)
	withRetries = setter.ForFunc((*Request).SetRetries)
)

// requestDefaults is applied by the first stage, so every request starts
// from the same baseline before its own options.
var requestDefaults = setter.Join(
	withMethod.To("GET"),
	withTimeout.To(30*time.Second),
	withRetries.To(0),
)

// RequestScenario configures requests with setters and validates them in a
// chain that records the first error into the request.
type RequestScenario struct{}

func (*RequestScenario) Name() string { return "request" }

func (*RequestScenario) Description() string {
	return "Setter-configured requests validated by a chain that records the failure"
}

func (*RequestScenario) Graph() *Definition {
	return &Definition{
		Name: "request",
		Stages: []Node{
			{ID: "defaults", Label: "apply defaults"},
			{ID: "options", Label: "apply options"},
			{ID: "method", Label: "method is supported"},
			{ID: "path", Label: "path is absolute"},
			{ID: "timeout", Label: "timeout is positive"},
			{ID: "normalize", Label: "upper-case method"},
		},
		Finish: Node{ID: "summary", Label: "summarize"},
	}
}

func recordRequestErr(r *Request, err error) { r.Err = err }

func newRequestPipeline(options ...setter.Setter[Request]) *railz.Pipeline[Request, string] {
	return railz.NewPipeline("request",
		railz.Finish(summarizeRequest),
		railz.NewStage("defaults", railz.Transform(requestDefaults)),
		railz.NewStage("options", railz.Transform(setter.Join(options...))),
		railz.NewStage("method", railz.Apply(func(r *Request) error {
			switch strings.ToUpper(r.Method) {
			case "GET", "POST", "PUT", "DELETE":
				return nil
			default:
				return fmt.Errorf("%w: %q", errBadMethod, r.Method)
			}
		}, recordRequestErr)),
		railz.NewStage("path", railz.Apply(func(r *Request) error {
			if !strings.HasPrefix(r.Path, "/") {
				return fmt.Errorf("%w: %q", errBadPath, r.Path)
			}
			return nil
		}, recordRequestErr)),
		railz.NewStage("timeout", railz.Apply(func(r *Request) error {
			if r.Timeout <= 0 {
				return errBadTimeout
			}
			return nil
		}, recordRequestErr)),
		railz.NewStage("normalize", railz.Transform(func(r *Request) {
			r.Method = strings.ToUpper(r.Method)
		})),
	)
}

func summarizeRequest(r *Request) string {
	if r.Err != nil {
		return "rejected: " + r.Err.Error()
	}
	return fmt.Sprintf("%s %s (timeout %s, retries %d)", r.Method, r.Path, r.Timeout, r.Retries)
}

func (s *RequestScenario) Run(ctx context.Context, e *env) error {
	printHeader(e.out, s)

	cases := []struct {
		name    string
		options []setter.Setter[Request]
	}{
		{"valid", []setter.Setter[Request]{withMethod.To("post"), withPath.To("/orders"), withRetries.To(3)}},
		{"relative path", []setter.Setter[Request]{withPath.To("orders")}},
		{"zero timeout", []setter.Setter[Request]{withPath.To("/orders"), withTimeout.To(0)}},
	}

	for _, tc := range cases {
		p := newRequestPipeline(tc.options...)
		sl, err := watch(e, p)
		if err != nil {
			_ = p.Close()
			return err
		}

		var req Request
		summary := runLogged(ctx, sl, p, &req)
		fmt.Fprintf(e.out, "\n%s%s%s\n", colorWhite, tc.name, colorReset)
		report(e.out, p)
		fmt.Fprintf(e.out, "  %-10s %s\n", "result", summary)
		_ = p.Close()
	}
	return nil
}
