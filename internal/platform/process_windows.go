//go:build windows

package platform

import "syscall"

const (
	createNoWindow        = 0x08000000
	createNewProcessGroup = 0x00000200
)

// detachedProcAttr hides the console window and detaches the process group
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow | createNewProcessGroup,
	}
}
