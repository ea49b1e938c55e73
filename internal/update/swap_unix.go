//go:build !windows

package update

var platformSwapper swapper = unixSwapper{}
