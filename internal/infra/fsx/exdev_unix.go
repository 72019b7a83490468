//go:build unix

package fsx

import (
	"errors"
	"syscall"
)

// errors.Is 会沿 *os.LinkError 的 Unwrap 链查找，无需单独解包。
func isEXDEV(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
