package configs

import "time"

// HTTP defines configuration for the HTTP server. The Port specifies
// which port the server will bind to; ShutdownTimeout bounds graceful
// shutdown on termination.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
	// ShutdownTimeout is how long in-flight requests get to finish.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
