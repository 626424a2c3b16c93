package config

import (
	"fmt"
	"strings"
)

// AlertsConfig sets when the watcher reports a product as running low.
type AlertsConfig struct {
	LowStockThreshold int `koanf:"lowstockthreshold"`
}

// String returns a string representation of the alerts configuration.
func (c *AlertsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Alerts ---\n")
	b.WriteString(fmt.Sprintf("  lowstockthreshold: %d\n", c.LowStockThreshold))
	return b.String()
}

func (c *AlertsConfig) Validate() error {
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("alerts low stock threshold cannot be negative: %d", c.LowStockThreshold)
	}
	return nil
}
