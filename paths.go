package dicomweb

import (
	"fmt"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
)

var envRef = regexp.MustCompile(`\$(\w+|\{[^}]*\})`)

// expandPath resolves environment variable references, then a leading ~ or
// ~user, and finally makes the result absolute. References to unset
// variables are left as written, so they never collapse onto another path.
func (f *Factory) expandPath(p string) (string, error) {
	p = f.expandVars(p)

	expanded, err := f.expandHome(p)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", expanded, err)
	}
	return abs, nil
}

func (f *Factory) expandVars(p string) string {
	if !strings.Contains(p, "$") {
		return p
	}
	return envRef.ReplaceAllStringFunc(p, func(ref string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(ref[1:], "{"), "}")
		if v, ok := f.opts.LookupEnv(name); ok {
			return v
		}
		return ref
	})
}

func (f *Factory) expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}

	name, rest := p[1:], ""
	if i := strings.IndexAny(name, "/"+string(filepath.Separator)); i >= 0 {
		name, rest = name[:i], name[i+1:]
	}

	var home string
	if name == "" {
		h, err := f.opts.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", p, err)
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			// Unknown users are left untouched, like a shell would.
			return p, nil
		}
		home = u.HomeDir
	}

	if rest == "" {
		return home, nil
	}
	return filepath.Join(home, rest), nil
}
