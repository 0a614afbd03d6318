package diskarb

// dispatchClaim advances a claim request: release the current owner's
// claim (its release hook may dissent), then install the requester as the
// new owner.
func (e *Engine) dispatchClaim(request *Request) bool {
	disk := request.Disk()

	// Commence the claim release.
	if !request.GetState(RequestStateStagedApprove) {
		owner := disk.Claim()

		e.retain(request)
		disk.SetState(DiskStateCommandActive, true)
		request.SetState(RequestStateStagedApprove, true)

		respond := e.claimReleaseResponder(request)
		switch {
		case owner == nil:
			respond(nil)
		case owner.Address() != 0:
			e.approvals.ClaimRelease(disk, owner, respond)
		default:
			// The owning session is gone; its claim cannot be released
			// cooperatively.
			respond(NewDissenter(ReturnNotPermitted, ""))
		}
		return false
	}

	if dissenter := request.Dissenter(); dissenter != nil {
		e.dispatchCallback(request, dissenter)
		e.Signal()
		return true
	}

	// Commence the claim.
	e.retain(request)
	disk.SetState(DiskStateCommandActive, true)
	disk.SetClaim(nil)

	if callback := request.Callback(); callback != nil {
		if session := callback.Session(); session != nil {
			address := integerArgument(request.Argument2())
			context := integerArgument(request.Argument3())
			disk.SetClaim(NewCallback(session, address, context, nil))
		}
	}

	e.claimComplete(0, request)
	return true
}

func (e *Engine) claimComplete(status int, request *Request) {
	disk := request.Disk()

	e.logger.Debug("claimed disk", "id", disk.ID())

	e.DispatchCompletion(request, UnixErr(status))

	disk.SetState(DiskStateCommandActive, false)
	e.Signal()
	e.release(request)
}

// claimReleaseResponder records the owner's release response as the
// request's dissenter. Unlike operation approvals, release responses bind
// root callers too.
func (e *Engine) claimReleaseResponder(request *Request) func(*Dissenter) {
	return func(response *Dissenter) {
		e.loop.Post(func() {
			request.SetDissenter(response)
			request.Disk().SetState(DiskStateCommandActive, false)
			e.Signal()
			e.release(request)
		})
	}
}
