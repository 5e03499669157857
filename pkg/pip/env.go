// Package pip builds and runs the pip wheel subprocess.
//
// pip does the actual dependency resolution, download and compilation; this
// package only assembles its command line and a reproducible environment for
// it. The environment handling is a value, not process-global state, so
// building it twice cannot accumulate flags.
package pip

import (
	"fmt"
	"sort"
	"strings"
)

// Reproducibility environment defaults.
//
// Wheels built from sdists are not reproducible out of the box; these
// settings patch around the known sources of nondeterminism.
const (
	// debugFlag disables debug symbols in compiled extensions. GCC debug
	// symbols capture the build path into the .so file.
	debugFlag = "-g0"

	// sourceDateEpoch is 1980-01-01, the oldest timestamp zip (and thus the
	// wheel format) can represent.
	sourceDateEpoch = "315532800"

	// hashSeed pins Python's hash randomization, which otherwise perturbs
	// metadata file ordering.
	hashSeed = "0"
)

// BuildEnv describes the environment for the pip subprocess: the inherited
// base environment patched for reproducibility, plus user-supplied extras.
type BuildEnv struct {
	// Extra is merged last and wins over both the base environment and the
	// reproducibility defaults.
	Extra map[string]string
}

// Apply returns base with the reproducibility variables applied and Extra
// merged in. base is not modified. SOURCE_DATE_EPOCH and PYTHONHASHSEED are
// set only if unset; CFLAGS gets the debug-disabling flag appended exactly
// once, even if Apply runs repeatedly over its own output.
func (e BuildEnv) Apply(base []string) []string {
	env := make([]string, 0, len(base)+3)

	var haveCFLAGS, haveEpoch, haveSeed bool
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "CFLAGS":
			haveCFLAGS = true
			if !hasFlag(value, debugFlag) {
				kv = key + "=" + value + " " + debugFlag
			}
		case "SOURCE_DATE_EPOCH":
			haveEpoch = true
		case "PYTHONHASHSEED":
			haveSeed = true
		}
		env = append(env, kv)
	}
	if !haveCFLAGS {
		env = append(env, "CFLAGS="+debugFlag)
	}
	if !haveEpoch {
		env = append(env, "SOURCE_DATE_EPOCH="+sourceDateEpoch)
	}
	if !haveSeed {
		env = append(env, "PYTHONHASHSEED="+hashSeed)
	}

	keys := make([]string, 0, len(e.Extra))
	for key := range e.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = setEnv(env, key, e.Extra[key])
	}
	return env
}

// hasFlag reports whether flag appears as a whole word in a flags string.
func hasFlag(flags, flag string) bool {
	for _, f := range strings.Fields(flags) {
		if f == flag {
			return true
		}
	}
	return false
}

// setEnv sets key=value in env, replacing an existing entry for key.
func setEnv(env []string, key, value string) []string {
	entry := fmt.Sprintf("%s=%s", key, value)
	for i, kv := range env {
		if k, _, _ := strings.Cut(kv, "="); k == key {
			env[i] = entry
			return env
		}
	}
	return append(env, entry)
}
