// Package envvars resolves ${name} and $name placeholders in configuration
// text against a set of variables.
package envvars

import (
	"fmt"
	"regexp"
	"strings"
)

var variableRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// EnvVars maps variable names to values.
type EnvVars map[string]string

// New returns the variables given as key, value pairs. A trailing key
// without a value is ignored.
func New(keyValues ...string) EnvVars {
	env := make(EnvVars, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		env[keyValues[i]] = keyValues[i+1]
	}
	return env
}

// FromEnviron returns the variables of an environment in the form returned
// by os.Environ.
func FromEnviron(environ []string) EnvVars {
	env := make(EnvVars, len(environ))
	for _, kv := range environ {
		if i := strings.Index(kv, "="); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

// Parse returns the variables given as KEY=VALUE strings.
func Parse(pairs []string) (EnvVars, error) {
	env := make(EnvVars, len(pairs))
	for _, kv := range pairs {
		i := strings.Index(kv, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid variable %q, expected KEY=VALUE", kv)
		}
		env[kv[:i]] = kv[i+1:]
	}
	return env, nil
}

// Override sets every variable of other in e, replacing existing values.
func (e EnvVars) Override(other EnvVars) EnvVars {
	for k, v := range other {
		e[k] = v
	}
	return e
}

// Expand substitutes ${name} and $name placeholders with their values.
// Placeholders naming an unknown variable are kept literally.
func (e EnvVars) Expand(text string) string {
	if !strings.Contains(text, "$") {
		return text
	}
	return variableRegex.ReplaceAllStringFunc(text, func(placeholder string) string {
		match := variableRegex.FindStringSubmatch(placeholder)
		name := match[1]
		if name == "" {
			name = match[2]
		}
		if value, ok := e[name]; ok {
			return value
		}
		return placeholder
	})
}
