package pty

import "golang.org/x/sys/unix"

// inqRequest asks for the number of unread bytes on a tty.
const inqRequest = unix.TIOCINQ
