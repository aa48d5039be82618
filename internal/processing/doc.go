// Package processing runs the analysis pipeline: an interval-driven poller
// claims pending uploads, extracts the EXIF device identity from a bounded
// file prefix, and obtains a forgery-likelihood assessment before marking
// the record completed or failed.
package processing
