// Package config loads, validates, and normalizes fstop's TOML
// configuration.
//
// Configuration sections by subsystem:
//   - Paths: staging/log directories and the API bind address + token
//   - Analysis: sniff cap, poll interval, and upload limits
//   - LLM: chat-completion connection settings for forgery scoring
//   - Logging: log format and level
package config
