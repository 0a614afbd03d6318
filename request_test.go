package diskarb

import "testing"

func TestRequestFields(t *testing.T) {
	unit := NewUnit("unit0")
	disk := NewDisk("sdb1", unit)
	session := NewSession("client")
	callback := NewCallback(session, 2, 3, nil)

	request := NewRequest(KindUnmount, disk, int64(UnmountOptionForce), "a", "b", 501, 20, callback)

	if request.Kind() != KindUnmount || request.Disk() != disk {
		t.Error("kind or disk mismatch")
	}
	if request.Argument1() != int64(UnmountOptionForce) {
		t.Error("argument1 mismatch")
	}
	if request.Argument2() != "a" || request.Argument3() != "b" {
		t.Error("argument mismatch")
	}
	if request.UserUID() != 501 || request.UserGID() != 20 {
		t.Error("uid/gid mismatch")
	}
	if request.Callback() != callback {
		t.Error("callback mismatch")
	}
}

func TestRequestStateBits(t *testing.T) {
	request := NewRequest(KindMount, nil, 0, nil, nil, 0, 0, nil)

	if request.GetState(RequestStateStagedApprove) {
		t.Error("fresh request has staging bits")
	}

	request.SetState(RequestStateStagedProbe, true)
	request.SetState(RequestStateStagedApprove, true)

	if !request.GetState(RequestStateStagedProbe | RequestStateStagedApprove) {
		t.Error("combined bit query failed")
	}
	if request.GetState(RequestStateStagedAuthorize) {
		t.Error("authorize bit set unexpectedly")
	}
}

func TestRequestStageDerivation(t *testing.T) {
	mount := NewRequest(KindMount, nil, 0, nil, nil, 0, 0, nil)
	if mount.Stage() != StageProbe {
		t.Errorf("fresh mount stage = %v", mount.Stage())
	}
	mount.SetState(RequestStateStagedProbe, true)
	if mount.Stage() != StageApprove {
		t.Errorf("probed mount stage = %v", mount.Stage())
	}
	mount.SetState(RequestStateStagedApprove, true)
	if mount.Stage() != StageAuthorize {
		t.Errorf("approved mount stage = %v", mount.Stage())
	}
	mount.SetState(RequestStateStagedAuthorize, true)
	if mount.Stage() != StageExecute {
		t.Errorf("authorized mount stage = %v", mount.Stage())
	}

	eject := NewRequest(KindEject, nil, 0, nil, nil, 0, 0, nil)
	if eject.Stage() != StageApprove {
		t.Errorf("fresh eject stage = %v", eject.Stage())
	}

	claim := NewRequest(KindClaim, nil, 0, nil, nil, 0, 0, nil)
	claim.SetState(RequestStateStagedApprove, true)
	if claim.Stage() != StageExecute {
		t.Errorf("approved claim stage = %v", claim.Stage())
	}

	if NewRequest(KindRefresh, nil, 0, nil, nil, 0, 0, nil).Stage() != StageExecute {
		t.Error("refresh is single-stage")
	}
	if NewRequest(KindRename, nil, 0, nil, nil, 0, 0, nil).Stage() != StageExecute {
		t.Error("rename is single-stage")
	}
}

func TestArgumentCoercion(t *testing.T) {
	if stringArgument(nil) != "" || stringArgument(42) != "" {
		t.Error("non-strings must coerce to empty")
	}
	if stringArgument("-u") != "-u" {
		t.Error("string coercion failed")
	}

	for _, v := range []any{uint64(9), int64(9), int32(9), uint32(9), 9, uint(9)} {
		if integerArgument(v) != 9 {
			t.Errorf("integerArgument(%T) failed", v)
		}
	}
	if integerArgument("9") != 0 {
		t.Error("string coerced to integer")
	}
}

func TestMountContainsArgument(t *testing.T) {
	cases := []struct {
		arguments string
		argument  string
		want      bool
	}{
		{"-u", "-u", true},
		{"nosuid,update", "update", true},
		{"nosuid, update", "update", true},
		{"updated", "update", false},
		{"", "update", false},
		{"nosuid,noexec", "-u", false},
	}
	for _, c := range cases {
		if got := mountContainsArgument(c.arguments, c.argument); got != c.want {
			t.Errorf("mountContainsArgument(%q, %q) = %v", c.arguments, c.argument, got)
		}
	}
}
