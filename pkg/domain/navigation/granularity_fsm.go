package navigation

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/frops/planner/pkg/domain/timeline"
)

// Events accepted by the granularity machine.
const (
	EventToggle  = "toggle"
	EventZoomIn  = "zoom_in"
	EventZoomOut = "zoom_out"
)

const (
	weekState  = statekit.StateID(timeline.Week)
	monthState = statekit.StateID(timeline.Month)
)

// granularityContext records which granularities the view may switch to.
type granularityContext struct {
	allowed map[timeline.Granularity]bool
}

func (c granularityContext) permits(g timeline.Granularity) bool {
	return len(c.allowed) == 0 || c.allowed[g]
}

// granularityMachine tracks the week/month view mode.
type granularityMachine struct {
	interpreter *statekit.Interpreter[granularityContext]
}

func newGranularityMachine(initial timeline.Granularity, allowed []timeline.Granularity) (*granularityMachine, error) {
	ctx := granularityContext{}
	if len(allowed) > 0 {
		ctx.allowed = make(map[timeline.Granularity]bool, len(allowed))
		for _, g := range allowed {
			ctx.allowed[g] = true
		}
	}
	if !ctx.permits(initial) {
		return nil, fmt.Errorf("granularity %q is not enabled", initial)
	}

	builder := statekit.NewMachine[granularityContext]("granularity").
		WithInitial(statekit.StateID(initial)).
		WithContext(ctx).
		WithGuard("weekAllowed", func(c granularityContext, _ statekit.Event) bool {
			return c.permits(timeline.Week)
		}).
		WithGuard("monthAllowed", func(c granularityContext, _ statekit.Event) bool {
			return c.permits(timeline.Month)
		})

	builder.State(weekState).
		On(EventToggle).Target(monthState).Guard("monthAllowed").
		On(EventZoomOut).Target(monthState).Guard("monthAllowed").
		Done()

	builder.State(monthState).
		On(EventToggle).Target(weekState).Guard("weekAllowed").
		On(EventZoomIn).Target(weekState).Guard("weekAllowed").
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build granularity machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &granularityMachine{interpreter: interpreter}, nil
}

// send applies event and reports an error when the view mode did not change.
func (m *granularityMachine) send(event string) error {
	before := m.current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.current() != before {
		return nil
	}
	return &TransitionError{Event: event, From: before}
}

func (m *granularityMachine) current() timeline.Granularity {
	return timeline.Granularity(m.interpreter.State().Value)
}
