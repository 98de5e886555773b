// Package simulation provides a scripted test harness for validating
// emergent dynamics of the engine.
//
// The harness exercises the real Engine and an in-memory event journal with
// no mocks. Scenarios are Go values listing gestures (trace points, commits,
// pointer collapses, recalls) and how many ticks to run after each, and the
// runner captures a per-step copy of neuron state for property-based
// assertions.
//
// Usage:
//
//	func TestRecallReachesMotors(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:  "recall",
//	        Dt:    0.1,
//	        Steps: []simulation.Step{{Recall: "SQUARE", Ticks: 5}},
//	    })
//	    simulation.AssertPatternFired(t, result, 0, "SQUARE")
//	}
package simulation
