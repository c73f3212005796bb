package crashnotify

// ConfigError is returned when a sink cannot resolve a usable credential
// or destination from its explicit configuration or the environment. It
// is always returned before any network call is made.
type ConfigError struct {
	// Missing names the setting that could not be resolved.
	Missing string
}

func (e *ConfigError) Error() string {
	return "crashnotify: missing configuration: " + e.Missing
}
