// Package harness runs display scenarios against the real engine on a
// manual clock.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: coffee_single_order
//	description: "One order walks every stage"
//	vendor: coffee
//	frame_ms: 125
//	duration_ms: 16000
//	orders:
//	  - at_ms: 0
//	    order_number: "001"
//	    items: [Latte]
//	expect:
//	  - at_ms: 2999
//	    stage: RECEIVED
//	  - at_ms: 3000
//	    stage: PREPARING
//	assertions:
//	  - type: final_stage
//	    stage: IDLE
//	  - type: dropped_count
//	    count: 0
//
// # Timeline
//
// The harness visits every instant that is a multiple of frame_ms, an order
// arrival or an expectation, in time order. At each instant it delivers the
// orders due then, draws one frame (which advances the stage machine), and
// finally checks any expectation for that instant. An expectation is therefore
// what a display refreshing at that instant would show.
//
// # Assertion Types
//
//   - final_stage: the stage after the last instant
//   - dropped_count: number of orders rejected by the full queue
//   - transition_count: number of stage changes
//   - completion_order: order numbers in the order they returned to IDLE
//   - no_skipped_stages: every change is IDLE->RECEIVED or a stage to its successor
//
// # Deterministic Testing
//
// Every run starts at testutil.Epoch, journals into an in-memory store under
// the scenario name as run ID, and is replayed from that journal afterwards.
// A replay that diverges fails the scenario. Traces are stable enough for
// golden file comparison (see RunWithGolden).
package harness
