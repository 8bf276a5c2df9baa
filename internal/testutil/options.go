package testutil

import "github.com/zjrosen/gridhist/internal/gridhistory"

// historyConfig holds builder settings.
type historyConfig struct {
	fill         string
	autoCompress bool
	observer     gridhistory.Observer
}

func defaultConfig() historyConfig {
	return historyConfig{autoCompress: true}
}

func (c historyConfig) viewOptions() []gridhistory.Option {
	opts := []gridhistory.Option{gridhistory.WithAutoCompress(c.autoCompress)}
	if c.observer != nil {
		opts = append(opts, gridhistory.WithObserver(c.observer))
	}
	return opts
}

// Option configures a Builder.
type Option func(*historyConfig)

// Fill sets the baseline value of every cell.
func Fill(value string) Option {
	return func(c *historyConfig) {
		c.fill = value
	}
}

// NoCompress disables automatic diff compression.
func NoCompress() Option {
	return func(c *historyConfig) {
		c.autoCompress = false
	}
}

// Observe registers fn as the view's observer.
func Observe(fn gridhistory.Observer) Option {
	return func(c *historyConfig) {
		c.observer = fn
	}
}
