package diskarb

import "syscall"

// dispatchRefresh re-reads the disk's volume state. The refresh hook runs
// synchronously on the loop; a non-zero result surfaces as ENOTSUP.
func (e *Engine) dispatchRefresh(request *Request) bool {
	disk := request.Disk()

	status := ReturnSuccess

	// Determine whether the disk is mountable.
	if mountable, ok := disk.BoolDescription(DescriptionVolumeMountableKey); ok && !mountable {
		status = ReturnUnsupported
	}

	if status != ReturnSuccess {
		e.DispatchCompletion(request, status)
		e.Signal()
		return true
	}

	e.retain(request)
	disk.SetState(DiskStateCommandActive, true)

	errno := 0
	if e.refresher.Refresh(disk) != ReturnSuccess {
		errno = int(syscall.ENOTSUP)
	}

	e.refreshComplete(errno, request)
	return true
}

func (e *Engine) refreshComplete(status int, request *Request) {
	disk := request.Disk()

	e.DispatchCompletion(request, UnixErr(status))

	disk.SetState(DiskStateCommandActive, false)
	e.Signal()
	e.release(request)
}
