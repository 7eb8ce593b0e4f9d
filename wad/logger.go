package wad

import (
	"io"
	"log"
)

var logger *log.Logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger sets the logger used for WAD reading progress messages. Logging is off by default.
func SetLogger(l *log.Logger) {
	logger = l
}
