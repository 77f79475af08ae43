// Package security derives a posture report from gateway configuration.
//
// # What this package must NOT do
//
//   - Read configuration from the environment; callers pass a ReportInput.
//   - Import authgate or any sibling internal package.
package security
