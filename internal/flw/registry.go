package flw

import (
	"fmt"
	"strings"
)

// WhiteListAll is the wildcard whitelist entry enabling every registered
// command.
const WhiteListAll = "*"

// Registry maps command codes to commands and enforces the configured
// whitelist. It is built in two phases at startup: Register for every
// command, then InitializeWhiteList exactly once. After initialization it
// is immutable and safe for lock-free concurrent reads; the startup
// happens-before the listener accepting connections is the only
// synchronization it needs.
type Registry struct {
	commands    map[int32]Command
	whiteList   map[int32]struct{} // nil when allowAll
	allowAll    bool
	initialized bool
}

// NewRegistry returns an empty, uninitialized registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[int32]Command)}
}

// Register inserts a command under the code derived from its name.
// Registering the same code twice can only be caused by broken startup
// wiring, so it panics rather than returning an error.
func (r *Registry) Register(cmd Command) {
	if r.initialized {
		panic("flw: Register called after InitializeWhiteList")
	}
	code := MustCode(cmd.Name())
	if _, dup := r.commands[code]; dup {
		panic(fmt.Sprintf("flw: command %q registered twice", cmd.Name()))
	}
	r.commands[code] = cmd
}

// InitializeWhiteList loads the configured set of enabled command names and
// seals the registry. An empty list and the "*" wildcard both mean every
// command is enabled; a name that is not a registered command is a
// configuration error. Must be called exactly once, after all Register
// calls.
func (r *Registry) InitializeWhiteList(names []string) error {
	if r.initialized {
		panic("flw: InitializeWhiteList called twice")
	}

	if len(names) == 0 {
		r.allowAll = true
		r.initialized = true
		return nil
	}

	whiteList := make(map[int32]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == WhiteListAll {
			r.allowAll = true
			r.initialized = true
			return nil
		}
		code, err := ToCode(name)
		if err != nil {
			return fmt.Errorf("white list entry %q: %w", name, err)
		}
		if _, known := r.commands[code]; !known {
			return fmt.Errorf("white list entry %q is not a registered command", name)
		}
		whiteList[code] = struct{}{}
	}

	r.whiteList = whiteList
	r.initialized = true
	return nil
}

// IsKnown reports whether code belongs to a registered command.
func (r *Registry) IsKnown(code int32) bool {
	_, ok := r.commands[code]
	return ok
}

// IsEnabled reports whether a code passes the whitelist. Calling it before
// initialization is a programming error.
func (r *Registry) IsEnabled(code int32) bool {
	r.checkInitialized()
	if r.allowAll {
		return true
	}
	_, ok := r.whiteList[code]
	return ok
}

// Get returns the command registered for code, or nil when the code is
// unknown. Callers that need to distinguish unknown from disabled check
// IsKnown first.
func (r *Registry) Get(code int32) Command {
	r.checkInitialized()
	return r.commands[code]
}

func (r *Registry) checkInitialized() {
	if !r.initialized {
		panic("flw: registry used before InitializeWhiteList")
	}
}

// BuildRegistry registers the full command set against the dispatcher,
// loads the whitelist and returns the sealed registry. This is the only
// constructor the daemon uses, so no partially initialized registry is ever
// observable by a connection handler.
func BuildRegistry(d Dispatcher, whiteList []string) (*Registry, error) {
	r := NewRegistry()
	for _, cmd := range []Command{
		&ruokCommand{d: d},
		&monitorCommand{d: d},
		&statResetCommand{d: d},
		&nopCommand{d: d},
		&confCommand{d: d},
		&consCommand{d: d},
		&connStatsResetCommand{d: d},
		&serverStatCommand{d: d},
		&statCommand{d: d},
		&briefWatchCommand{d: d},
		&watchCommand{d: d},
		&watchByPathCommand{d: d},
		&dumpCommand{d: d},
		&enviCommand{d: d},
		&dataSizeCommand{d: d},
		&isReadOnlyCommand{d: d},
	} {
		r.Register(cmd)
	}
	if err := r.InitializeWhiteList(whiteList); err != nil {
		return nil, err
	}
	return r, nil
}
