//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package pty

import "syscall"

// inqRequest asks for the number of unread bytes on a tty.
const inqRequest = syscall.FIONREAD
