//go:build !windows

package engine

import "syscall"

// sessionAttr returns SysProcAttr that places the bridge in its own session,
// detaching it from the parent's controlling terminal.
func sessionAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
