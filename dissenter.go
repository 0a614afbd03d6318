package diskarb

// Dissenter is a veto: a status code plus an optional observer-supplied
// reason. Approval observers answer with one to block an operation; the
// engine creates them for precondition and execution failures.
type Dissenter struct {
	status Return
	reason string
}

// NewDissenter creates a dissenter with the given status and reason.
// The reason may be empty.
func NewDissenter(status Return, reason string) *Dissenter {
	return &Dissenter{status: status, reason: reason}
}

// Status returns the dissenter's status code.
func (d *Dissenter) Status() Return {
	return d.status
}

// Reason returns the observer-supplied reason, or "".
func (d *Dissenter) Reason() string {
	return d.reason
}

func (d *Dissenter) String() string {
	if d.reason == "" {
		return d.status.String()
	}
	return d.status.String() + ": " + d.reason
}

func dissenterStatus(d *Dissenter) Return {
	if d == nil {
		return ReturnSuccess
	}
	return d.status
}
