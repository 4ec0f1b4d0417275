// Package harness runs scripted trade-store scenarios.
//
// A scenario is a YAML file listing service calls in order. Each step can
// carry expectations about its outcome; the harness runs every step
// against a fresh store, checks the expectations and records a trace.
//
// # Scenario Format
//
//	name: delete_then_reload
//	description: "Deleting a record makes it unloadable"
//	context:
//	  user: admin_user
//	  agent: admin_ui
//	  action: cleanup
//	  intent: test
//	steps:
//	  - op: save_new
//	    id: T1
//	    data: { common: { book: RATES-1 } }
//	  - op: delete_by_id
//	    id: T1
//	    expect:
//	      deleted: true
//	  - op: load_by_id
//	    id: T1
//	    expect:
//	      error: NOT_FOUND
//
// The scenario context is used for every mutating step unless the step
// sets its own.
//
// # Deterministic Testing
//
// Log timestamps come from a testutil.StepClock, so the trace and the
// operation log of a scenario are identical across runs. RunWithGolden
// compares their canonical JSON against testdata/golden/{name}.golden.
package harness
