package cli

import (
	"fmt"
	"io"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/hupe1980/neighborhood"
)

// NewLogger returns a neighborhood logger backed by the charmbracelet/log
// handler writing to w.
func NewLogger(w io.Writer, cfg LogConfig) (*neighborhood.Logger, error) {
	level, err := charmlog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = charmlog.TextFormatter
	case "json":
		formatter = charmlog.JSONFormatter
	case "logfmt":
		formatter = charmlog.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q (want text, json or logfmt)", cfg.Format)
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
	})
	return neighborhood.NewLogger(handler), nil
}
