package pipeline

import (
	"fmt"
	"strings"
)

// CancelBehaviour decides what a cancelled run produces. A chain holds a
// single behaviour: setting it through any segment handle replaces it for
// every segment, including segments frozen by ConvertTo.
type CancelBehaviour int

const (
	// Uncancellable turns any cancellation into a CANCELLATION_MISUSE error.
	Uncancellable CancelBehaviour = iota
	// Discard drops the value; the run ends Empty.
	Discard
	// Convert applies the next conversion boundary to the current value and
	// ends the run with the converted value. Without a downstream boundary
	// it behaves as Return.
	Convert
	// Return ends the run with the current value and error, unconverted.
	Return
)

var behaviourNames = map[CancelBehaviour]string{
	Uncancellable: "uncancellable",
	Discard:       "discard",
	Convert:       "convert",
	Return:        "return",
}

// String returns the behaviour name.
func (b CancelBehaviour) String() string {
	if name, ok := behaviourNames[b]; ok {
		return name
	}
	return fmt.Sprintf("cancel_behaviour(%d)", int(b))
}

// ParseCancelBehaviour parses a behaviour name, case-insensitively. An empty
// string parses as Uncancellable.
func ParseCancelBehaviour(s string) (CancelBehaviour, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Uncancellable, nil
	}
	for b, n := range behaviourNames {
		if n == name {
			return b, nil
		}
	}
	return Uncancellable, fmt.Errorf("unknown cancel behaviour %q", s)
}

// Resolution reports how a run ended.
type Resolution int

const (
	// Completed means every pipe ran without cancellation.
	Completed Resolution = iota
	// Discarded means a cancellation was resolved with Discard.
	Discarded
	// Converted means a cancellation was resolved with Convert.
	Converted
	// Returned means a cancellation was resolved with Return.
	Returned
)

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case Completed:
		return "completed"
	case Discarded:
		return "discarded"
	case Converted:
		return "converted"
	case Returned:
		return "returned"
	default:
		return fmt.Sprintf("resolution(%d)", int(r))
	}
}

// decision is a resolved cancellation travelling to the caller unchanged.
type decision struct {
	resolution Resolution
	outcome    Outcome[any]
	pipe       string
}
