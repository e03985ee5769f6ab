//go:build linux

package main

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func lockMemory() error {
	return errors.Wrap(unix.Mlockall(unix.MCL_CURRENT|unix.MCL_FUTURE), "cannot lock memory")
}
