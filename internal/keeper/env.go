package keeper

import (
	"os"
	"os/user"
	"runtime"
)

// Environment describes the serving process for the envi command. Collected
// once at dispatcher construction; none of it changes for the process
// lifetime.
type Environment struct {
	Version   string
	HostName  string
	GoVersion string
	OSName    string
	OSArch    string
	PID       int
	UserName  string
	UserDir   string
	RunID     string
}

func collectEnvironment(version, runID string) Environment {
	env := Environment{
		Version:   version,
		GoVersion: runtime.Version(),
		OSName:    runtime.GOOS,
		OSArch:    runtime.GOARCH,
		PID:       os.Getpid(),
		RunID:     runID,
	}
	if host, err := os.Hostname(); err == nil {
		env.HostName = host
	}
	if u, err := user.Current(); err == nil {
		env.UserName = u.Username
	}
	if wd, err := os.Getwd(); err == nil {
		env.UserDir = wd
	}
	return env
}
