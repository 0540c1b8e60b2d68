package interp

import "github.com/noxlang/nox/internal/value"

// FlowKind discriminates the non-local control flow signals the
// statement evaluator produces: an explicit result union returned from
// every statement visit instead of Go panics, grounded on
// runtime/execution_context.go's ControlFlowKind vocabulary (FlowBreak,
// FlowExit/FlowReturn), trimmed to Lua's three unwind conditions and
// extended with FlowGoto since Lua has goto instead of a labeled-loop
// continue.
type FlowKind int

const (
	FlowNone FlowKind = iota
	FlowBreak
	FlowGoto
	FlowReturn
)

// Signal carries a FlowKind plus whatever payload that kind needs: Goto
// carries the target label name, Return carries the value list being
// unwound to the call boundary.
type Signal struct {
	Kind   FlowKind
	Label  string
	Values []value.Value
}

// none is the zero Signal, returned by every statement that completes
// normally.
var none = Signal{Kind: FlowNone}

func (s Signal) isNone() bool { return s.Kind == FlowNone }
