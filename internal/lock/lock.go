// Package lock keeps two runs from working on the same backup root at once.
package lock

import (
	"context"
	"errors"
)

var ErrLocked = errors.New("backup root is locked")

type Locker interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}
