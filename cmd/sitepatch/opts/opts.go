package opts

import (
	"github.com/walteh/sitepatch/pkg/operation"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool
}

// RunOpts contains the flags shared by every command that patches files
type RunOpts struct {
	DryRun bool
	Async  bool
	Backup bool
}

// Options converts the flags into runner options
func (r RunOpts) Options() operation.Options {
	return operation.Options{
		DryRun: r.DryRun,
		Async:  r.Async,
		Backup: r.Backup,
	}
}
