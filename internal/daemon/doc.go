// Package daemon ties the analysis store, processing pipeline, and HTTP API
// into a single-instance background service guarded by a lock file.
package daemon
