package app

import (
	"flag"
	"os"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

// addKlogFlags adds klog flags to the specified flag set.
func addKlogFlags(fs *pflag.FlagSet) {
	// klog only accepts a golang flag set, so go through a shim.
	flagSetShim := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	klog.InitFlags(flagSetShim)

	fs.AddGoFlagSet(flagSetShim)
}
