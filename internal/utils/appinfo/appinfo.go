// Package appinfo reports the running application's version.
package appinfo

import (
	"os"
	"runtime/debug"
)

// GetVersion resolves the application version from, in order, the
// APP_VERSION environment variable, module build info, and ldflags VCS
// settings. Falls back to "0.0.0-unknown".
func GetVersion() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	return "0.0.0-unknown"
}
