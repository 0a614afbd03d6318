package device

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestOpenReadOnlyMissingNode(t *testing.T) {
	d, status := OpenReadOnly("/nonexistent/device/node")
	if d != nil {
		t.Fatal("handle returned for a missing node")
	}
	if status != int(unix.ENOENT) {
		t.Errorf("status = %d, want ENOENT", status)
	}
}

func TestErrnoValue(t *testing.T) {
	if got := errnoValue(unix.EBUSY); got != int(unix.EBUSY) {
		t.Errorf("errnoValue(EBUSY) = %d", got)
	}
	if got := errnoValue(errors.New("opaque")); got != int(unix.EIO) {
		t.Errorf("errnoValue(opaque) = %d, want EIO", got)
	}
}
