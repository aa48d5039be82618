// Command fstop analyzes photo files for EXIF device identity and forgery
// likelihood, either locally or through a running fstop daemon.
package main
