package logging

import "time"

// Config controls the router's own dispatch behavior; which sinks run is
// decided by the NamedSink list passed to NewRouter, not by this struct.
type Config struct {
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	Console          ConsoleConfig
	DropWarnInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

func DefaultConfig() Config {
	return Config{
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
	}
}

func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	cloned := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		cloned[k] = v
	}
	return cloned
}
