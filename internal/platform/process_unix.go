//go:build !windows

package platform

import "syscall"

// detachedProcAttr starts the child in a new session
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
