// Package logging holds the process-wide logrus logger. Packages obtain a
// prefixed entry through GetLogger so every line names its origin.
package logging

import (
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var log = logrus.New()

func init() {
	log.Level = logrus.InfoLevel
	log.Out = colorable.NewColorableStdout()
	log.Formatter = &prefixed.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
}

// SetLevel parses a level name ("debug", "info", "warn", "error").
// Unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
}

// GetLogger returns an entry tagged with the given package prefix.
func GetLogger(pkg string) *logrus.Entry {
	return log.WithField("prefix", pkg)
}
