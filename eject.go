package diskarb

import "syscall"

// dispatchEject advances an eject request: approve, authorize (only when
// an observer demanded it), then eject the unit's hardware.
func (e *Engine) dispatchEject(request *Request) bool {
	disk := request.Disk()

	// Commence the eject approval.
	if !request.GetState(RequestStateStagedApprove) {
		status := ReturnSuccess

		// Determine whether the disk is ejectable.
		whole, ok := disk.BoolDescription(DescriptionMediaWholeKey)
		if !ok {
			status = ReturnUnsupported
		}
		if ok && !whole {
			status = ReturnUnsupported
		}

		if status != ReturnSuccess {
			e.DispatchCompletion(request, status)
			e.Signal()
			return true
		}

		e.retain(request)
		disk.SetState(DiskStateCommandActive, true)
		request.SetState(RequestStateStagedApprove, true)
		e.approvals.EjectApproval(disk, e.approvalResponder(request, KindEject))
		return false
	}

	// Commence the eject authorization. The round-trip runs only when an
	// observer answered with the require-authorization code.
	if !request.GetState(RequestStateStagedAuthorize) {
		status := ReturnSuccess

		if dissenter := request.Dissenter(); dissenter != nil {
			if dissenter.Status() == ResponseRequireAuthorize {
				request.SetDissenter(nil)
				status = ReturnNotPrivileged
			}
		}

		if status != ReturnSuccess {
			e.retain(request)
			disk.SetState(DiskStateCommandActive, true)
			request.SetState(RequestStateStagedAuthorize, true)
			e.authorize(request, RightUnmount)
			return false
		}
		request.SetState(RequestStateStagedAuthorize, true)
	}

	if dissenter := request.Dissenter(); dissenter != nil {
		e.dispatchCallback(request, dissenter)
		e.Signal()
		return true
	}

	// Commence the eject.
	if disk.Unit().GetState(UnitStateCommandActive) {
		return false
	}

	e.retain(request)
	disk.SetState(DiskStateCommandActive, true)
	disk.Unit().SetState(UnitStateCommandActive, true)

	e.logger.Debug("ejecting disk", "id", disk.ID())

	var status int
	handle, openStatus := e.devices.OpenReadOnly(disk.DevicePath())
	if openStatus != 0 {
		status = openStatus
	} else {
		if !disk.Unit().GetState(UnitStateEjected) {
			status = handle.Eject()
			// Devices without eject hardware report ENOTTY; the preceding
			// unmount already detached the volume, so treat it as done.
			if status == int(syscall.ENOTTY) {
				status = 0
			}
			if status == 0 {
				disk.Unit().SetState(UnitStateEjected, true)
			}
		}
		handle.Close()
	}

	e.ejectComplete(status, request)
	return true
}

func (e *Engine) ejectComplete(status int, request *Request) {
	disk := request.Disk()

	if status != 0 {
		e.logger.Info("unable to eject disk", "id", disk.ID(), "status", UnixErr(status))
	} else {
		e.logger.Debug("ejected disk", "id", disk.ID())
	}

	e.DispatchCompletion(request, UnixErr(status))

	disk.Unit().SetState(UnitStateCommandActive, false)
	disk.SetState(DiskStateCommandActive, false)
	e.Signal()
	e.release(request)
}
