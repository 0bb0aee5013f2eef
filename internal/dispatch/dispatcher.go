package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Backend abstracts the live backend client. Implemented by backend.Client.
type Backend interface {
	// Do issues one logical call. Transport-level failures and
	// application-level error documents come back as *Error values with
	// the corresponding Kind.
	Do(ctx context.Context, endpoint, method string, body map[string]any, query map[string]string) (Document, error)

	// Health reports whether the backend answers its health endpoint.
	Health(ctx context.Context) bool
}

// Router abstracts the simulation engine. Implemented by sim.Engine.
type Router interface {
	Route(endpoint, method string, body map[string]any, query map[string]string) (Document, error)
}

// Auditor records dispatched calls and mode transitions. Implemented by
// auditlog.Store; a nil Auditor disables recording.
type Auditor interface {
	RecordCall(endpoint, method string, mode Mode, outcome string, elapsed time.Duration)
	RecordTransition(from, to Mode, reason string)
}

// Dispatcher presents one logical call interface regardless of backend
// availability. It owns the live/simulated transition: a transport failure
// flips the mode for the rest of the process and the call is replayed
// against the simulation engine, so the caller still gets a document.
type Dispatcher struct {
	mode    *ModeState
	backend Backend
	engine  Router
	audit   Auditor
	log     *slog.Logger
}

// New creates a Dispatcher. audit may be nil.
func New(mode *ModeState, backend Backend, engine Router, audit Auditor) *Dispatcher {
	return &Dispatcher{
		mode:    mode,
		backend: backend,
		engine:  engine,
		audit:   audit,
		log:     slog.Default(),
	}
}

// Mode returns the current mode.
func (d *Dispatcher) Mode() Mode {
	return d.mode.Get()
}

// SetMode is the manual override. It is authoritative and is not reverted
// by later successful calls.
func (d *Dispatcher) SetMode(m Mode) {
	from := d.mode.Get()
	d.mode.Set(m)
	if from != m && d.audit != nil {
		d.audit.RecordTransition(from, m, "manual override")
	}
}

// Probe issues the startup connectivity check (GET /health) and pre-decides
// the mode before any functional call. It returns the resulting mode.
func (d *Dispatcher) Probe(ctx context.Context) Mode {
	if d.mode.Get() == Simulated {
		return Simulated
	}
	if !d.backend.Health(ctx) {
		d.fallBack("health probe failed")
	}
	return d.mode.Get()
}

// Request routes one logical call to the live backend or the simulation
// engine. It always yields some document: transport failures degrade to
// simulation, every other failure comes back as a *Error whose Document()
// carries the {"error": ...} shape.
func (d *Dispatcher) Request(ctx context.Context, endpoint, method string, body map[string]any, query map[string]string) (Document, error) {
	start := time.Now()

	if !supportedMethod(method) {
		err := Errorf(KindUnsupportedMethod, "Unsupported method: %s", method)
		d.record(endpoint, method, d.mode.Get(), err, start)
		return nil, err
	}

	if d.mode.Get() == Simulated {
		doc, err := d.engine.Route(endpoint, method, body, query)
		d.record(endpoint, method, Simulated, err, start)
		return doc, err
	}

	doc, err := d.backend.Do(ctx, endpoint, method, body, query)
	if err == nil {
		d.record(endpoint, method, Live, nil, start)
		return doc, nil
	}

	if kind, ok := KindOf(err); ok && kind == KindApplication {
		// Backend reachable, well-formed error document: pass through
		// verbatim, mode untouched.
		d.record(endpoint, method, Live, err, start)
		return nil, err
	}

	// Transport failure: absorb, flip, replay against the engine.
	d.fallBack(err.Error())
	doc, err = d.engine.Route(endpoint, method, body, query)
	d.record(endpoint, method, Simulated, err, start)
	return doc, err
}

// fallBack flips Live to Simulated. The advisory is logged only by the
// call that performed the flip.
func (d *Dispatcher) fallBack(reason string) {
	if !d.mode.FallBack() {
		return
	}
	d.log.Warn("backend unreachable, switching to simulated mode", "reason", reason)
	if d.audit != nil {
		d.audit.RecordTransition(Live, Simulated, reason)
	}
}

func (d *Dispatcher) record(endpoint, method string, mode Mode, err error, start time.Time) {
	if d.audit == nil {
		return
	}
	outcome := "success"
	if err != nil {
		if kind, ok := KindOf(err); ok {
			outcome = kind.String()
		} else {
			outcome = "error"
		}
	}
	d.audit.RecordCall(endpoint, method, mode, outcome, time.Since(start))
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
