package watcher

import "time"

// Options configures the settings file watcher.
type Options struct {
	// SettleDelay is how long the file must be quiet before OnChange runs.
	SettleDelay time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 150 * time.Millisecond
	}
}
