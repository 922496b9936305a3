//go:build !windows && !linux && !darwin

package keycatalog

var rawcodes = map[uint16]ID{}
