// Package launch models the environment being prepared for the external
// program. Setup steps mutate an Environment instance; the launcher's own
// process environment is never touched, so re-running a job never observes
// state left behind by a previous run.
package launch

import (
	"sort"
	"strings"
)

// Environment is the under-construction process environment for the
// external program: a set of variables plus the working directory the
// program will be started in. It is not safe for concurrent use; the
// executor serializes setup steps that share it.
type Environment struct {
	vars map[string]string
	dir  string
}

// NewEnvironment creates an Environment seeded from a list of KEY=VALUE
// pairs, typically os.Environ() of the launcher process.
func NewEnvironment(base []string) *Environment {
	vars := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return &Environment{vars: vars}
}

// Set assigns a variable, overwriting any previous value.
func (e *Environment) Set(key, value string) {
	e.vars[key] = value
}

// Unset removes a variable if present.
func (e *Environment) Unset(key string) {
	delete(e.vars, key)
}

// Lookup returns the value of a variable and whether it is set.
func (e *Environment) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Prepend puts value in front of a list-valued variable such as PATH,
// using sep as the element separator. An empty or unset variable becomes
// just the new value. Prepending a value that is already the first
// element is a no-op, which keeps repeated setup steps idempotent.
func (e *Environment) Prepend(key, value, sep string) {
	current, ok := e.vars[key]
	if !ok || current == "" {
		e.vars[key] = value
		return
	}
	if current == value || strings.HasPrefix(current, value+sep) {
		return
	}
	e.vars[key] = value + sep + current
}

// SetDir sets the working directory the external program will run in.
func (e *Environment) SetDir(dir string) {
	e.dir = dir
}

// Dir returns the working directory, or "" if none was configured yet.
func (e *Environment) Dir() string {
	return e.dir
}

// Snapshot returns the environment as a sorted list of KEY=VALUE pairs
// suitable for exec.Cmd.Env. Sorting makes the handoff deterministic.
func (e *Environment) Snapshot() []string {
	out := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
