package logging

import (
	"context"
	"log"
)

func init() {
	if fl := log.Flags(); fl&log.Ltime != 0 {
		log.SetFlags(fl | log.Lmicroseconds)
	}
}

// Logf logs a formatted message. The context is passed so that contextual
// information can be attached to log lines as the logging evolves.
func Logf(
	ctx context.Context,
	format string,
	args ...interface{},
) {
	log.Printf(format, args...)
}
