// Package preflight provides readiness checks for the directories, binaries,
// and origin that photoreel depends on.
//
// These checks run in two contexts:
//   - publish and reset call RunAll and CheckSystemDeps before touching any
//     album, so a missing tool or unwritable directory fails the run early.
//   - The CLI "photoreel status" command renders every Result as a table.
//
// Origin checks are skipped when origin.kind is "none".
package preflight
