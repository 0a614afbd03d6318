package diskarb

import (
	"strings"

	"github.com/ehrlich-b/go-diskarb/internal/constants"
)

// mountContainsArgument reports whether the comma-separated mount argument
// string contains the given token.
func mountContainsArgument(arguments, argument string) bool {
	for _, field := range strings.Split(arguments, ",") {
		if strings.TrimSpace(field) == argument {
			return true
		}
	}
	return false
}

// dispatchMount advances a mount request: wait for a current probe,
// approve, authorize when demanded, apply the read-only preference, then
// invoke the mount helper.
func (e *Engine) dispatchMount(request *Request) bool {
	disk := request.Disk()

	// A mount attempt supersedes any prior eject on the unit, even if this
	// attempt later fails or yields.
	disk.Unit().SetState(UnitStateEjected, false)

	if request.Link() != nil {
		if disk.Unit().GetState(UnitStateCommandActive) {
			return false
		}
	}

	// Commence the probe.
	if !request.GetState(RequestStateStagedProbe) {
		// An unmounted disk is re-probed before mounting; yield until the
		// prober refreshes it.
		if _, ok := disk.StringDescription(DescriptionVolumePathKey); !ok {
			request.SetState(RequestStateStagedProbe, true)
			disk.SetState(DiskStateStagedProbe, false)
			e.Signal()
			return false
		}
	} else {
		if !disk.GetState(DiskStateStagedProbe) {
			return false
		}
	}

	// Commence the mount approval.
	if !request.GetState(RequestStateStagedApprove) {
		status := ReturnSuccess

		// Determine whether the disk is mountable.
		if mountable, ok := disk.BoolDescription(DescriptionVolumeMountableKey); ok && !mountable {
			status = ReturnUnsupported
		}

		// Determine whether the disk is mounted. Remounting is only valid
		// with the update argument.
		if _, mounted := disk.StringDescription(DescriptionVolumePathKey); mounted {
			arguments := stringArgument(request.Argument3())
			if arguments == "" {
				status = ReturnBusy
			} else if !mountContainsArgument(arguments, constants.MountArgumentUpdateShort) &&
				!mountContainsArgument(arguments, constants.MountArgumentUpdate) {
				status = ReturnBusy
			}
		}

		// Determine whether the disk is clean.
		if disk.GetState(DiskStateRequireRepair) {
			request.SetDissenter(NewDissenter(ReturnNotReady, ""))
			status = ReturnNotReady
		}

		if status != ReturnSuccess {
			e.DispatchCompletion(request, status)
			e.Signal()
			return true
		}

		e.retain(request)
		disk.SetState(DiskStateCommandActive, true)
		request.SetState(RequestStateStagedApprove, true)
		e.approvals.MountApproval(disk, e.approvalResponder(request, KindMount))
		return false
	}

	// Commence the mount authorization.
	if !request.GetState(RequestStateStagedAuthorize) {
		status := ReturnSuccess

		if dissenter := request.Dissenter(); dissenter != nil {
			if dissenter.Status() == ResponseRequireAuthorize {
				request.SetDissenter(nil)
				status = ReturnNotPrivileged
			}
			if dissenter.Status() == ResponseMountReadOnlyAuthorize {
				status = ReturnNotPrivileged
			}
		}

		if status != ReturnSuccess {
			e.retain(request)
			disk.SetState(DiskStateCommandActive, true)
			request.SetState(RequestStateStagedAuthorize, true)
			e.authorize(request, RightMount)
			return false
		}
		request.SetState(RequestStateStagedAuthorize, true)
	}

	// Consume the read-only control codes: they demand a preference, not
	// a veto.
	if dissenter := request.Dissenter(); dissenter != nil {
		switch dissenter.Status() {
		case ResponseMountReadOnly, ResponseMountReadOnlyAuthorize:
			disk.SetState(DiskStateMountPreferenceNoWrite, true)
			request.SetDissenter(nil)
		}
	}

	if dissenter := request.Dissenter(); dissenter != nil {
		e.dispatchCallback(request, dissenter)
		e.Signal()
		return true
	}

	// Commence the mount.
	if disk.Unit().GetState(UnitStateCommandActive) {
		return false
	}

	mountpoint := stringArgument(request.Argument2())

	e.retain(request)
	disk.SetState(DiskStateCommandActive, true)
	disk.Unit().SetState(UnitStateCommandActive, true)

	e.logger.Debug("mounting disk", "id", disk.ID())

	e.filesystems.Mount(disk, mountpoint, stringArgument(request.Argument3()), e.mountResponder(request))
	return true
}

// mountResponder finishes a mount: record the mount point on success,
// dissent with the translated errno on failure.
func (e *Engine) mountResponder(request *Request) func(status int, mountpoint string) {
	return func(status int, mountpoint string) {
		e.loop.Post(func() {
			disk := request.Disk()

			if status != 0 {
				e.logger.Info("unable to mount disk", "id", disk.ID(), "status", UnixErr(status))
				request.SetDissenter(NewDissenter(UnixErr(status), ""))
			} else {
				disk.SetBypath(mountpoint)
				disk.SetDescription(DescriptionVolumePathKey, mountpoint)

				e.logger.Debug("mounted disk", "id", disk.ID(), "mountpoint", mountpoint)

				e.notifier.DiskLog(disk)
				e.notifier.DiskDescriptionChanged(disk, DescriptionVolumePathKey)
			}

			e.DispatchCompletion(request, UnixErr(status))

			disk.Unit().SetState(UnitStateCommandActive, false)
			disk.SetState(DiskStateCommandActive, false)
			e.Signal()
			e.release(request)
		})
	}
}
