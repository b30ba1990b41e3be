//go:build unix

package vos

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func sysProcAttr(detach bool) *syscall.SysProcAttr {
	if !detach {
		return nil
	}
	// Keep terminal interrupts from reaching background jobs.
	return &syscall.SysProcAttr{Setpgid: true}
}

func (p *nativeProcess) terminate(sig os.Signal) error {
	target := p.Pid()
	if p.group {
		// Setpgid with a zero Pgid makes the child its own group leader.
		target = -target
	} else if p.exited() {
		return nil
	}
	return kill(target, sig)
}

func terminatePID(pid int, sig os.Signal) error {
	return kill(pid, sig)
}

func kill(target int, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		s = unix.SIGTERM
	}
	err := unix.Kill(target, s)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func probe(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
