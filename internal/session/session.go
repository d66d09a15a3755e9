// Package session identifies one run of the compiler core; diagnostics do
// not carry it. A Session carries no compiler state of its own — it is
// metadata threaded through a driver.Compilation so multiple concurrent
// compilations (e.g. an LSP-style host compiling several files) can be told
// apart in logs.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session tags one compilation with a stable identity and the time it
// started, the way a request-scoped ID threads through a server's logs.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time
}

// New mints a fresh Session with a random v4 UUID.
func New() Session {
	return Session{ID: uuid.New(), StartedAt: time.Now()}
}

// String renders the session's identity for log lines: "sess-<uuid>".
func (s Session) String() string {
	return "sess-" + s.ID.String()
}
