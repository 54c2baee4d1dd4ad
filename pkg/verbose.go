package dupindex

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var globalVerboseLevel int
var debugFlags map[string]bool
var verboseOutput io.Writer = os.Stderr

// SetVerboseLevel sets the global verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// SetVerboseOutput redirects verbose and trace output; nil restores stderr
func SetVerboseOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	verboseOutput = w
}

// VerboseEnter logs function entry at level 3+ and returns a func that logs the exit
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}
	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	fmt.Fprintf(verboseOutput, "[TRACE] Entering function: %s\n", funcName)
	return func() {
		fmt.Fprintf(verboseOutput, "[TRACE] Exiting function: %s\n", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel < level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(verboseOutput, "[VERBOSE-%d] %s", level, msg)
}

// VerboseDump writes a spew dump of values at level 3+
func VerboseDump(label string, values ...interface{}) {
	if globalVerboseLevel < 3 {
		return
	}
	fmt.Fprintf(verboseOutput, "[TRACE] %s:\n%s", label, spew.Sdump(values...))
}

// SetDebugFlags sets the debug flags from a comma-separated string.
// Accepts plain names ("scan,index") and name:value pairs ("scan:true,index:off").
func SetDebugFlags(flagsStr string) {
	debugFlags = make(map[string]bool)
	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		name, value, hasValue := strings.Cut(flag, ":")
		enabled := true
		if hasValue {
			switch strings.ToLower(value) {
			case "false", "0", "no", "off":
				enabled = false
			}
		}
		debugFlags[strings.ToLower(name)] = enabled
	}
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	return debugFlags[strings.ToLower(flag)]
}
