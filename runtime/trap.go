package runtime

import (
	"bytes"
	"fmt"
	"io"
	"runtime/pprof"

	"github.com/maruel/panicparse/stack"
)

// TrapReport is the diagnostic produced from a recovered invariant
// violation: Signature is stable across repeated occurrences of the same
// underlying bug (so a caller running many iterations can deduplicate
// aborts instead of printing the same trap a thousand times), Text is the
// full human-readable detail to log or print once per distinct signature.
type TrapReport struct {
	Signature string
	Text      string
}

// ReportTrap formats a just-recovered panic value into a TrapReport. It
// parses the current goroutine dump the same way a crash-triage step would
// parse a crashing input's stack trace, so repeated traps from the same
// call site collapse to one signature instead of flooding a log. It does
// not change the fail-fast policy: the caller still exits after logging.
func ReportTrap(recovered any) TrapReport {
	text := fmt.Sprintf("invariant violation: %v", recovered)

	var dump bytes.Buffer
	if err := pprof.Lookup("goroutine").WriteTo(&dump, 2); err != nil {
		return TrapReport{Signature: text, Text: text}
	}

	ctx, err := stack.ParseDump(bytes.NewReader(dump.Bytes()), io.Discard, false)
	if err != nil {
		return TrapReport{Signature: text, Text: text + "\n" + dump.String()}
	}

	sig := text
	for _, gr := range ctx.Goroutines {
		if !gr.First {
			continue
		}
		calls := gr.Stack.Calls
		if len(calls) > 2 {
			sig = text + "\n" + calls[2].FullSrcLine()
		}
		break
	}

	return TrapReport{Signature: sig, Text: text + "\n" + dump.String()}
}
