package diskarb

import "github.com/google/uuid"

// Session identifies a connected client. Sessions are created by the IPC
// layer; the engine only ever follows the non-owning references callbacks
// carry.
type Session struct {
	id   uuid.UUID
	name string
}

// NewSession creates a session with a fresh id.
func NewSession(name string) *Session {
	return &Session{id: uuid.New(), name: name}
}

// ID returns the session's id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Name returns the session's display name.
func (s *Session) Name() string {
	return s.name
}

// ResultFunc delivers a request's outcome to the client: the disk and a
// dissenter, or nil on success.
type ResultFunc func(disk *Disk, dissenter *Dissenter)

// Callback is an opaque handle for delivering a result into a session: the
// session reference, the destination address and context within it, and
// for local callers a function to invoke.
//
// A callback whose address is zero points at a destination that no longer
// exists (the session died); the claim handler refuses handoff from such
// owners with a not-permitted dissent.
type Callback struct {
	session *Session
	address uint64
	context uint64
	fn      ResultFunc
}

// NewCallback creates a callback handle.
func NewCallback(session *Session, address, context uint64, fn ResultFunc) *Callback {
	return &Callback{session: session, address: address, context: context, fn: fn}
}

// Session returns the callback's session reference, or nil.
func (c *Callback) Session() *Session {
	return c.session
}

// Address returns the destination address, or zero if the destination
// is gone.
func (c *Callback) Address() uint64 {
	return c.address
}

// Context returns the destination context value.
func (c *Callback) Context() uint64 {
	return c.context
}

func (c *Callback) invoke(disk *Disk, dissenter *Dissenter) {
	if c.fn != nil {
		c.fn(disk, dissenter)
	}
}
