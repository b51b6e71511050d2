package host

import "go.uber.org/zap"

// DefaultModuleName is the import module of intrinsics for resources
// exported from a world's root.
const DefaultModuleName = "[export]$root"

// Options configures a Boundary. The zero value is usable.
type Options struct {
	// Logger overrides the package logger.
	Logger *zap.Logger

	// ModuleName is the host module the guest imports intrinsics from.
	// Use "[export]<interface>" for resources exported by an interface.
	ModuleName string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = Logger()
	}
	if o.ModuleName == "" {
		o.ModuleName = DefaultModuleName
	}
	return o
}

// InterfaceModule returns the intrinsics module name for resources exported
// by iface, such as "wasi:io/streams@0.2.0".
func InterfaceModule(iface string) string {
	return "[export]" + iface
}
