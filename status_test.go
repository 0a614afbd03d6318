package diskarb

import (
	"syscall"
	"testing"
)

func TestUnixErrEncoding(t *testing.T) {
	if got := UnixErr(0); got != ReturnSuccess {
		t.Errorf("UnixErr(0) = %#x, want success", uint32(got))
	}
	if got := UnixErr(int(syscall.EBUSY)); got != 0xC010 {
		t.Errorf("UnixErr(EBUSY) = %#x, want 0xC010", uint32(got))
	}
	if got := UnixErr(int(syscall.ENOTTY)); got != 0xC019 {
		t.Errorf("UnixErr(ENOTTY) = %#x, want 0xC019", uint32(got))
	}
}

func TestReturnErrno(t *testing.T) {
	errno, ok := UnixErr(int(syscall.EIO)).Errno()
	if !ok || errno != syscall.EIO {
		t.Errorf("Errno() = %v, %v", errno, ok)
	}

	if _, ok := ReturnUnsupported.Errno(); ok {
		t.Error("Unsupported decoded as an errno")
	}
	if _, ok := ReturnSuccess.Errno(); ok {
		t.Error("success decoded as an errno")
	}
}

func TestSentinelValues(t *testing.T) {
	// The control codes are a wire contract with existing observers.
	if ResponseRequireAuthorize != 0xF8DAFF01 {
		t.Errorf("require-authorize = %#x", uint32(ResponseRequireAuthorize))
	}
	if ResponseMountReadOnly != 0xF8DAFF02 {
		t.Errorf("mount-read-only = %#x", uint32(ResponseMountReadOnly))
	}
	if ResponseMountReadOnlyAuthorize != 0xF8DAFF03 {
		t.Errorf("mount-read-only-authorize = %#x", uint32(ResponseMountReadOnlyAuthorize))
	}
}

func TestReturnString(t *testing.T) {
	cases := map[Return]string{
		ReturnSuccess:       "success",
		ReturnBusy:          "busy",
		ReturnNotMounted:    "not mounted",
		ReturnNotPrivileged: "not privileged",
		ReturnUnsupported:   "unsupported",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%#x.String() = %q, want %q", uint32(status), got, want)
		}
	}
}
