//go:build !unix

package watchdog

import "syscall"

func detachedAttr() *syscall.SysProcAttr {
	return nil
}
