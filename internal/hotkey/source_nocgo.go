//go:build !cgo

package hotkey

import "context"

// unavailableSource is used in builds without cgo, where libuiohook cannot
// be linked.
type unavailableSource struct{}

// NewSource returns a Source that cannot be started.
func NewSource() Source { return unavailableSource{} }

func (unavailableSource) Start(context.Context) (<-chan Event, error) {
	return nil, ErrHookUnavailable
}

func (unavailableSource) Stop() error { return nil }

func (unavailableSource) Available() (bool, string) {
	return false, "built without cgo; global keyboard hook disabled"
}
