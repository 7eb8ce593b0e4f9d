package mapeditor

import (
	"io"
	"log"
)

var logger *log.Logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger sets the logger used for editing progress messages. Logging is off by default.
func SetLogger(l *log.Logger) {
	logger = l
}
