package diskarb

import "time"

// Kind selects the operation a request performs.
type Kind int

const (
	KindClaim Kind = iota
	KindEject
	KindMount
	KindRefresh
	KindRename
	KindUnmount
)

func (k Kind) String() string {
	switch k {
	case KindClaim:
		return "claim"
	case KindEject:
		return "eject"
	case KindMount:
		return "mount"
	case KindRefresh:
		return "refresh"
	case KindRename:
		return "rename"
	case KindUnmount:
		return "unmount"
	}
	return "unknown"
}

// RequestState is a bitset of staging flags. Staging bits are monotone:
// once a handler sets one it stays set for the life of the request, and a
// handler re-entered after an async callback resumes at the first stage
// whose bit is unset.
type RequestState uint32

const (
	RequestStateStagedProbe     RequestState = 1 << 0
	RequestStateStagedApprove   RequestState = 1 << 1
	RequestStateStagedAuthorize RequestState = 1 << 2
)

// Stage is the derived position of a request in its lifecycle, computed
// from the staging bits. It exists for logs and tests; the bits are the
// source of truth.
type Stage int

const (
	StageProbe Stage = iota
	StageApprove
	StageAuthorize
	StageExecute
)

func (s Stage) String() string {
	switch s {
	case StageProbe:
		return "probe"
	case StageApprove:
		return "approve"
	case StageAuthorize:
		return "authorize"
	}
	return "execute"
}

// UnmountOptions is the bitfield carried in an unmount request's first
// argument.
type UnmountOptions uint32

const (
	UnmountOptionWhole UnmountOptions = 0x00000001
	UnmountOptionForce UnmountOptions = 0x00080000
)

// Request carries one disk-level operation through the lifecycle engine.
//
// The kind, disk, arguments, uid/gid and client callback are fixed at
// creation. The staging bits, dissenter and link are mutated by the engine
// on the scheduler loop only.
type Request struct {
	kind      Kind
	disk      *Disk
	created   time.Time
	argument1 int64
	argument2 any
	argument3 any
	userUID   uint32
	userGID   uint32
	callback  *Callback
	state     RequestState
	dissenter *Dissenter
	link      []*Request
}

// NewRequest creates a request. The meaning of the arguments depends on
// the kind:
//
//	Claim:   argument2 = destination address, argument3 = context
//	Mount:   argument2 = mount point path or nil, argument3 = mount arguments
//	Rename:  argument2 = new volume name
//	Unmount: argument1 = UnmountOptions bits
func NewRequest(kind Kind, disk *Disk, argument1 int64, argument2, argument3 any, userUID, userGID uint32, callback *Callback) *Request {
	return &Request{
		kind:      kind,
		disk:      disk,
		created:   time.Now(),
		argument1: argument1,
		argument2: argument2,
		argument3: argument3,
		userUID:   userUID,
		userGID:   userGID,
		callback:  callback,
	}
}

func (r *Request) Kind() Kind       { return r.kind }
func (r *Request) Disk() *Disk      { return r.disk }
func (r *Request) Argument1() int64 { return r.argument1 }
func (r *Request) Argument2() any   { return r.argument2 }
func (r *Request) Argument3() any   { return r.argument3 }
func (r *Request) UserUID() uint32  { return r.userUID }
func (r *Request) UserGID() uint32  { return r.userGID }

// Callback returns the client callback handle, or nil.
func (r *Request) Callback() *Callback {
	return r.callback
}

// SetCallback replaces the client callback handle. A nil callback detaches
// the client; the request still runs to completion.
func (r *Request) SetCallback(callback *Callback) {
	r.callback = callback
}

// Dissenter returns the recorded veto, or nil.
func (r *Request) Dissenter() *Dissenter {
	return r.dissenter
}

// SetDissenter records or clears the veto.
func (r *Request) SetDissenter(dissenter *Dissenter) {
	r.dissenter = dissenter
}

// Link returns the ordered sibling requests forming a batch, or nil.
func (r *Request) Link() []*Request {
	return r.link
}

// SetLink attaches the ordered sibling requests. The completion dispatcher
// reports the first sibling dissent when the request itself has none.
func (r *Request) SetLink(link []*Request) {
	r.link = link
}

// GetState reports whether every bit in state is set.
func (r *Request) GetState(state RequestState) bool {
	return r.state&state == state
}

// SetState sets or clears the given bits. The engine only ever sets
// staging bits; they are monotone within a request's run.
func (r *Request) SetState(state RequestState, value bool) {
	if value {
		r.state |= state
	} else {
		r.state &^= state
	}
}

// Stage derives the request's position from its staging bits. Refresh and
// rename are single-stage kinds and always report execute.
func (r *Request) Stage() Stage {
	switch {
	case r.kind == KindRefresh || r.kind == KindRename:
		return StageExecute
	case r.kind == KindMount && !r.GetState(RequestStateStagedProbe) && !r.GetState(RequestStateStagedApprove):
		// A mount of an already-mounted volume never parks for a re-probe,
		// so the probe bit stays unset; approve having run means the probe
		// stage is behind.
		return StageProbe
	case !r.GetState(RequestStateStagedApprove):
		return StageApprove
	case r.kind != KindClaim && !r.GetState(RequestStateStagedAuthorize):
		return StageAuthorize
	}
	return StageExecute
}

// stringArgument coerces an argument to a string; non-strings and nil
// coerce to "".
func stringArgument(v any) string {
	s, _ := v.(string)
	return s
}

// integerArgument coerces an argument to an unsigned integer.
func integerArgument(v any) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case int64:
		return uint64(n)
	case uint32:
		return uint64(n)
	case int32:
		return uint64(n)
	case int:
		return uint64(n)
	case uint:
		return uint64(n)
	}
	return 0
}
