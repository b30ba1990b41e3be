package vos

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
)

// signalNames holds the signals Terminate can be configured with on every
// supported platform.
var signalNames = map[syscall.Signal]string{
	syscall.SIGHUP:  "HUP",
	syscall.SIGINT:  "INT",
	syscall.SIGQUIT: "QUIT",
	syscall.SIGKILL: "KILL",
	syscall.SIGTERM: "TERM",
}

// ParseSignal converts a signal name like "TERM", "SIGKILL" or a number into a
// signal.
func ParseSignal(arg string) (syscall.Signal, error) {
	arg = strings.TrimPrefix(arg, "-")
	if arg == "" {
		return 0, fmt.Errorf("empty signal name")
	}
	if num, err := strconv.Atoi(arg); err == nil {
		if num <= 0 {
			return 0, fmt.Errorf("invalid signal number %d", num)
		}
		return syscall.Signal(num), nil
	}
	arg = strings.TrimPrefix(strings.ToUpper(arg), "SIG")
	for sig, name := range signalNames {
		if name == arg {
			return sig, nil
		}
	}
	return 0, fmt.Errorf("unknown signal %q", arg)
}
