// Package pipeline provides a synchronous, composable processing pipeline.
//
// A pipeline is a chain of segments. Each segment holds an ordered list of
// named pipes operating on one element type; ConvertTo closes the current
// segment and starts a new one of another type, linked by a converter.
// Processing starts at the terminal segment, recurses to the source segment,
// then unwinds downstream applying every pipe and every converter in order.
//
// # Outcomes
//
// Every pipe sees an Outcome: a value, an error, both, or neither. A pipe that
// fails (returns an error or panics) does not stop the run; the previous value
// is kept and the error is attached, so later pipes can inspect it:
//
//	p := pipeline.New[int]()
//	_ = p.AddPipes(
//	    pipeline.ValueOnly("invert", func(v int) (int, error) { return 1 / v, nil }),
//	    pipeline.OutcomeAware("fallback", func(o pipeline.Outcome[int]) (int, error) {
//	        if o.DidFail() {
//	            return -1, nil
//	        }
//	        return o.ValueOr(1), nil
//	    }),
//	)
//	res, _ := p.Process(ctx, 0) // res.Value() == -1
//
// # Pipe kinds
//
//   - Plain: receives the value and the carried error
//   - ValueOnly / Transform: receives the value only
//   - Cancellable: receives a cancel callback in addition to value and error
//   - OutcomeAware: receives the whole outcome, runs even without a value
//
// # Cancellation
//
// A cancellable pipe may call its cancel callback. The pipeline-wide
// CancelBehaviour, shared by every segment of the chain (last write wins),
// decides what the run produces: Discard yields an empty result, Convert
// applies the next converter to the current value and stops, Return yields the
// current value unconverted, and Uncancellable turns the signal into a
// CANCELLATION_MISUSE error. Convert and Return can produce a value of an
// upstream type; Result reports it through Raw and Foreign.
//
// # Errors
//
// Pipe failures are folded into the outcome. Conversion failures, cancellation
// misuse and empty unsafe unwraps abort the run and are returned as
// *errors.AppError. ProcessAll skips items that fail fatally; ProcessAllStrict
// stops at the first one.
//
// Pipelines are not safe for concurrent mutation. Build a pipeline fully
// before sharing it, or serialize access externally.
package pipeline
