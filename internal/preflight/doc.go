// Package preflight provides readiness checks for the filesystem paths and
// state subseg depends on.
//
// These checks run in two contexts:
//   - The "subseg preflight" command renders every result as a status table.
//   - The batch command calls RunAll before fanning out so a missing frames
//     directory fails once instead of once per video.
//
// Checks for disabled features (run history) are skipped.
package preflight
