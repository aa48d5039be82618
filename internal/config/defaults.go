package config

const (
	defaultStagingDir     = "~/.local/share/fstop/staging"
	defaultLogDir         = "~/.local/share/fstop/logs"
	defaultAPIBind        = "127.0.0.1:7219"
	defaultSniffBytes     = 65536
	defaultPollInterval   = 2
	defaultMaxUploadMiB   = 64
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel       = "google/gemini-3-flash-preview"
	defaultLLMReferer     = "https://github.com/fstop-forensics/fstop"
	defaultLLMTitle       = "fstop Forgery Scorer"
	defaultLLMTimeoutSecs = 60
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	// maxSniffBytes is the parser contract: the EXIF header and 0th IFD of
	// a well-formed JPEG always sit within the first 64 KiB.
	maxSniffBytes = 65536
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Analysis: Analysis{
			SniffBytes:   defaultSniffBytes,
			PollInterval: defaultPollInterval,
			MaxUploadMiB: defaultMaxUploadMiB,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSecs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
