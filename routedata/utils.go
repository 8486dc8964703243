package routedata

import (
	"github.com/dave/wherepoints/globals"
)

func logln(msg string, args ...any) {
	if globals.LOG {
		globals.Logger.Info(msg, args...)
	}
}

func debugln(msg string, args ...any) {
	if globals.DEBUG {
		globals.Logger.Debug(msg, args...)
	}
}
