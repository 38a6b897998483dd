package flw

import (
	"strings"
	"testing"
)

var allCommandNames = []string{
	"ruok", "mntr", "srst", "nopc", "conf", "cons", "crst", "srvr",
	"stat", "wchs", "wchc", "wchp", "dump", "envi", "dirs", "isro",
}

func TestRegistryAllowAll(t *testing.T) {
	tests := []struct {
		name      string
		whiteList []string
	}{
		{"AbsentConfig", nil},
		{"EmptyList", []string{}},
		{"Wildcard", []string{"*"}},
		{"WildcardAmongNames", []string{"ruok", "*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t, newTestDispatcher(t), tt.whiteList)
			for _, name := range allCommandNames {
				code := MustCode(name)
				if !reg.IsKnown(code) {
					t.Errorf("IsKnown(%q) = false", name)
				}
				if !reg.IsEnabled(code) {
					t.Errorf("IsEnabled(%q) = false with allow-all whitelist", name)
				}
			}
		})
	}
}

func TestRegistryExplicitWhiteList(t *testing.T) {
	reg := newTestRegistry(t, newTestDispatcher(t), []string{"ruok", "stat"})

	for _, name := range allCommandNames {
		code := MustCode(name)
		enabled := name == "ruok" || name == "stat"
		if got := reg.IsEnabled(code); got != enabled {
			t.Errorf("IsEnabled(%q) = %v, want %v", name, got, enabled)
		}
		if !reg.IsKnown(code) {
			t.Errorf("IsKnown(%q) = false; whitelist must not affect registration", name)
		}
	}
}

func TestRegistryUnknownCode(t *testing.T) {
	reg := newTestRegistry(t, newTestDispatcher(t), nil)

	code := MustCode("zzzz")
	if reg.IsKnown(code) {
		t.Error("IsKnown(zzzz) = true")
	}
	if cmd := reg.Get(code); cmd != nil {
		t.Errorf("Get(zzzz) = %v, want nil", cmd)
	}
}

func TestRegistryWhiteListRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name      string
		whiteList []string
		errSubstr string
	}{
		{"UnregisteredName", []string{"zzzz"}, "not a registered command"},
		{"WrongLength", []string{"monitor"}, "4 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRegistry(newTestDispatcher(t), tt.whiteList)
			if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("BuildRegistry(%v) error = %v, want substring %q", tt.whiteList, err, tt.errSubstr)
			}
		})
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	reg := NewRegistry()
	reg.Register(&ruokCommand{})
	reg.Register(&ruokCommand{})
}

func TestIsEnabledBeforeInitializationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("IsEnabled before initialization did not panic")
		}
	}()
	reg := NewRegistry()
	reg.Register(&ruokCommand{})
	reg.IsEnabled(MustCode("ruok"))
}

func TestInitializeWhiteListTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("second InitializeWhiteList did not panic")
		}
	}()
	reg := NewRegistry()
	reg.Register(&ruokCommand{})
	if err := reg.InitializeWhiteList(nil); err != nil {
		t.Fatalf("first InitializeWhiteList failed: %v", err)
	}
	_ = reg.InitializeWhiteList(nil)
}

func TestRegisterAfterInitializationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Register after initialization did not panic")
		}
	}()
	reg := NewRegistry()
	if err := reg.InitializeWhiteList(nil); err != nil {
		t.Fatalf("InitializeWhiteList failed: %v", err)
	}
	reg.Register(&ruokCommand{})
}
