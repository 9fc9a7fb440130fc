// Package types defines the Action entity, actionable roles, backend
// configuration, and the standard errors shared by the activity stream
// packages.
package types
