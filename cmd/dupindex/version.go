package main

import (
	"runtime/debug"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

// getVersionString prefers the linker supplied version, then module build info
func getVersionString() string {
	if version != "dev" && version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "development"
	}
	v := "development"
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return v + " (" + setting.Value[:7] + ")"
		}
	}
	return v
}
