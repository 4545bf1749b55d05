// Package exitcodes defines the standard exit codes used by cypress-repeat-pro.
package exitcodes

// Exit code constants used by cypress-repeat-pro
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when the repeat run finishes without an observed failure
// * TestFailure (1): Used when one or more attempts recorded failing tests
// * RuntimeErr (2): Used for infrastructure errors such as a missing engine,
//   an unreadable report or other failures outside the tests themselves
const (
	Success     = 0 // Run finished clean
	TestFailure = 1 // Test failures observed
	RuntimeErr  = 2 // Infrastructure errors
)
