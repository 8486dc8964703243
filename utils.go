package main

import "github.com/dave/wherepoints/globals"

func logln(msg string, args ...any) {
	if globals.LOG {
		globals.Logger.Info(msg, args...)
	}
}
