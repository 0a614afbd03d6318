package diskarb

import (
	"context"
	"time"

	"github.com/ehrlich-b/go-diskarb/internal/logging"
	"github.com/ehrlich-b/go-diskarb/internal/sched"
)

// Config wires an engine to its collaborators. Nil fields get no-op
// defaults that approve, authorize and execute everything successfully.
type Config struct {
	Approvals   ApprovalSource
	Authorizer  Authorizer
	Filesystems FilesystemOps
	MountPoints MountPoints
	Devices     DeviceOps
	Refresher   Refresher
	Notifier    Notifier
	Observer    Observer
	Logger      *logging.Logger
}

// Engine is the request lifecycle engine. All of its state (the disk
// list, pending requests, disk/unit/request flags) is owned by a single
// cooperative loop; collaborator responses are posted back onto it.
type Engine struct {
	approvals   ApprovalSource
	authorizer  Authorizer
	filesystems FilesystemOps
	mounts      MountPoints
	devices     DeviceOps
	refresher   Refresher
	notifier    Notifier
	observer    Observer
	logger      *logging.Logger

	loop     *sched.Loop
	disks    []*Disk
	pending  []*Request
	retained int
}

// New creates an engine.
func New(config Config) *Engine {
	e := &Engine{
		approvals:   config.Approvals,
		authorizer:  config.Authorizer,
		filesystems: config.Filesystems,
		mounts:      config.MountPoints,
		devices:     config.Devices,
		refresher:   config.Refresher,
		notifier:    config.Notifier,
		observer:    config.Observer,
		logger:      config.Logger,
	}
	if e.approvals == nil {
		e.approvals = approveAll{}
	}
	if e.authorizer == nil {
		e.authorizer = authorizeAll{}
	}
	if e.filesystems == nil {
		e.filesystems = noFilesystemOps{}
	}
	if e.mounts == nil {
		e.mounts = noMountPoints{}
	}
	if e.devices == nil {
		e.devices = noDevices{}
	}
	if e.refresher == nil {
		e.refresher = noRefresher{}
	}
	if e.notifier == nil {
		e.notifier = noNotifier{}
	}
	if e.observer == nil {
		e.observer = NoOpObserver{}
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	e.loop = sched.New(e.step)
	return e
}

// Run processes work until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.loop.Run(ctx)
}

// Settle synchronously processes posted work and stage signals until the
// engine is idle. It is the drive primitive for tests and single-threaded
// embedders; do not call it concurrently with Run.
func (e *Engine) Settle() {
	e.loop.Settle()
}

// Post runs fn on the engine loop. Anything touching disks, units or
// requests from outside a collaborator callback must go through here.
func (e *Engine) Post(fn func()) {
	e.loop.Post(fn)
}

// Signal wakes the stage loop so pending requests are revisited. The
// engine raises it on every state change that could unblock a request.
func (e *Engine) Signal() {
	e.loop.Signal()
}

// AddDisk registers a disk in the global disk list.
func (e *Engine) AddDisk(disk *Disk) error {
	if disk == nil {
		return NewError("add-disk", ErrCodeBadArgument, "nil disk")
	}
	for _, d := range e.disks {
		if d.ID() == disk.ID() {
			return NewDiskError("add-disk", disk.ID(), ErrCodeBusy, "disk already registered")
		}
	}
	e.disks = append(e.disks, disk)
	return nil
}

// LookupDisk finds a registered disk by id.
func (e *Engine) LookupDisk(id string) (*Disk, error) {
	for _, d := range e.disks {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, NewDiskError("lookup-disk", id, ErrCodeDiskNotFound, "disk not registered")
}

// Disks returns a snapshot of the global disk list.
func (e *Engine) Disks() []*Disk {
	out := make([]*Disk, len(e.disks))
	copy(out, e.disks)
	return out
}

func (e *Engine) removeDisk(disk *Disk) {
	for i, d := range e.disks {
		if d == disk {
			e.disks = append(e.disks[:i], e.disks[i+1:]...)
			return
		}
	}
}

// Submit enqueues a request for the stage loop and signals it.
func (e *Engine) Submit(request *Request) {
	if request == nil {
		return
	}
	e.loop.Post(func() {
		e.pending = append(e.pending, request)
		e.Signal()
	})
}

// PendingCount reports how many submitted requests the stage loop still
// holds. A request leaves the count once its dispatch returns true; for
// mount, rename and unmount that happens when the helper is invoked, before
// the helper's callback dispatches the completion.
func (e *Engine) PendingCount() int {
	return len(e.pending)
}

// step revisits every pending request and retires those whose dispatch
// returned true.
func (e *Engine) step() {
	kept := e.pending[:0]
	for _, request := range e.pending {
		if e.Dispatch(request) {
			continue
		}
		kept = append(kept, request)
	}
	e.pending = kept
}

// Dispatch advances one request. It returns true when the dispatcher is
// done with the request during this call: its completion was dispatched,
// or (mount, rename, unmount) its execute stage was handed to the helper,
// whose callback dispatches the completion. It returns false when it
// yielded pending an async callback or could not yet run.
func (e *Engine) Dispatch(request *Request) bool {
	if request == nil {
		return false
	}
	disk := request.Disk()
	if disk == nil {
		return false
	}
	if disk.GetState(DiskStateCommandActive) {
		return false
	}
	if !disk.GetState(DiskStateStagedAppear) {
		return false
	}

	switch request.Kind() {
	case KindClaim:
		return e.dispatchClaim(request)
	case KindEject:
		return e.dispatchEject(request)
	case KindMount:
		return e.dispatchMount(request)
	case KindRefresh:
		return e.dispatchRefresh(request)
	case KindRename:
		return e.dispatchRename(request)
	case KindUnmount:
		return e.dispatchUnmount(request)
	}
	return false
}

// DispatchCompletion delivers a request's terminal status to its client.
// A non-zero status is wrapped in a dissenter.
func (e *Engine) DispatchCompletion(request *Request, status Return) {
	if status != ReturnSuccess {
		e.dispatchCallback(request, NewDissenter(status, ""))
	} else {
		e.dispatchCallback(request, nil)
	}
}

// dispatchCallback invokes the client callback with the outcome, honoring
// the link-group adoption rule: a leader with no dissent of its own reports
// the first sibling dissent.
func (e *Engine) dispatchCallback(request *Request, dissenter *Dissenter) {
	e.observer.ObserveRequest(request.Kind(), dissenterStatus(dissenter), time.Since(request.created))

	callback := request.Callback()
	if callback == nil {
		return
	}

	if request.Link() != nil && dissenter == nil {
		dissenter = request.Dissenter()
		if dissenter == nil {
			for _, sub := range request.Link() {
				if d := sub.Dissenter(); d != nil {
					dissenter = d
					break
				}
			}
		}
	}

	callback.invoke(request.Disk(), dissenter)
}

// retain records an outstanding strong hold on the request: one per armed
// async stage, released by the matching callback.
func (e *Engine) retain(request *Request) {
	_ = request
	e.retained++
}

func (e *Engine) release(request *Request) {
	_ = request
	e.retained--
	if e.retained < 0 {
		e.logger.Error("request over-released", "kind", request.Kind())
	}
}

// RetainBalance reports the outstanding async holds; it returns to zero
// whenever no stage is suspended.
func (e *Engine) RetainBalance() int {
	return e.retained
}

// approvalResponder posts an approval response back onto the loop and
// applies the dissent policy: ordinary dissents bind non-root callers
// only, control codes are always recorded (the read-only codes only for
// mount, which is the only kind whose observers may answer with them).
func (e *Engine) approvalResponder(request *Request, kind Kind) func(*Dissenter) {
	return func(response *Dissenter) {
		e.loop.Post(func() {
			if request.UserUID() != 0 {
				request.SetDissenter(response)
			}
			if response != nil {
				switch response.Status() {
				case ResponseRequireAuthorize:
					request.SetDissenter(response)
				case ResponseMountReadOnly, ResponseMountReadOnlyAuthorize:
					if kind == KindMount {
						request.SetDissenter(response)
					}
				}
			}
			request.Disk().SetState(DiskStateCommandActive, false)
			e.Signal()
			e.release(request)
		})
	}
}

// authorize submits the authorization round-trip for the request's caller.
func (e *Engine) authorize(request *Request, right Right) {
	e.authorizer.Authorize(
		request.Disk(),
		request.UserUID(),
		request.UserGID(),
		right,
		AuthorizeForce|AuthorizeInteract,
		e.authorizationResponder(request),
	)
}

// authorizationResponder converts a failed authorization into a fresh
// dissenter and resumes the stage loop.
func (e *Engine) authorizationResponder(request *Request) func(Return) {
	return func(status Return) {
		e.loop.Post(func() {
			if status != ReturnSuccess {
				request.SetDissenter(NewDissenter(status, ""))
			}
			request.Disk().SetState(DiskStateCommandActive, false)
			e.Signal()
			e.release(request)
		})
	}
}
