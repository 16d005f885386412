// Package copilot implements the selection copilot workflow.
//
// A Controller tracks the editor selection, offers a menu of actions
// anchored at the end of the selection, runs the chosen action through a
// prompt template and a generator, and turns the answer into a checklist
// of suggestions that can be appended after, or replace, the selection.
//
// The controller is not safe for concurrent use. All methods run on the
// host's UI loop; generation happens in Jobs the host runs elsewhere and
// feeds back through Resolve.
package copilot
