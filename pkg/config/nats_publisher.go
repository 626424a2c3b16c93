package config

import (
	"fmt"
	"strings"
	"time"
)

// PublisherConfig controls how product change events are buffered and published.
type PublisherConfig struct {
	Stream   string        `koanf:"stream"`
	Subjects []string      `koanf:"subjects"`
	Buffer   int           `koanf:"buffer"`
	Timeout  time.Duration `koanf:"timeout"`
}

// String returns a string representation of the NATS Publisher configuration.
func (c *PublisherConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS Publisher ---\n")
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	b.WriteString(fmt.Sprintf("  subjects: %s\n", strings.Join(c.Subjects, ",")))
	b.WriteString(fmt.Sprintf("  buffer: %d\n", c.Buffer))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *PublisherConfig) Validate() error {
	if c.Stream == "" {
		return fmt.Errorf("PublisherConfig: stream is not configured")
	}
	if len(c.Subjects) == 0 {
		return fmt.Errorf("PublisherConfig: subjects are not configured")
	}
	if c.Buffer <= 0 {
		return fmt.Errorf("PublisherConfig: buffer must be greater than zero")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("PublisherConfig: timeout must be greater than zero")
	}
	return nil
}
