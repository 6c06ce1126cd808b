// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"wheelhouse/internal/cmdrun"
	"wheelhouse/pkg/source"
	"wheelhouse/pkg/wheels"
)

// nameAndVersion determines the package's name and version for
// descriptor and archive-name purposes.
//
// A local source directory is queried through its setup.py; a pinned
// requirement is split on ==; a bare name is resolved to its latest
// release through the index.
func (c Context) nameAndVersion(ctx context.Context, resolved *source.Resolved) (string, string, error) {
	if resolved.Dir != "" {
		return c.setupNameAndVersion(ctx, resolved.Dir)
	}
	if name, version, ok := strings.Cut(resolved.Installable, "=="); ok {
		return name, version, nil
	}
	return c.Index.NameAndVersion(ctx, resolved.Installable)
}

// setupNameAndVersion asks setup.py for the package name and version.
func (c Context) setupNameAndVersion(ctx context.Context, sourceDir string) (string, string, error) {
	c.Logger.Debug("querying setup.py for name and version", "dir", sourceDir)
	setupPath := filepath.Join(sourceDir, "setup.py")

	query := func(arg string) (string, error) {
		result, err := c.runTool(ctx, cmdrun.Command{
			Args:           []string{c.Python, setupPath, "--" + arg},
			Dir:            sourceDir,
			SuppressOutput: true,
		}, "setup.py --"+arg)
		if err != nil {
			return "", err
		}
		return lastLine(result.Stdout), nil
	}

	name, err := query("name")
	if err != nil {
		return "", "", err
	}
	version, err := query("version")
	if err != nil {
		return "", "", err
	}
	return name, version, nil
}

// lastLine returns the final non-blank line of the tool output.
// setup.py is free to print anything while loading; the answer to a
// --name/--version query is always the last thing it prints.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// pythonVersionTags builds the descriptor's python version tags.
// Explicit versions ("27", "36") are prefixed with "py"; with none
// given, the configured interpreter reports its own tag.
func (c Context) pythonVersionTags(ctx context.Context, versions []string) ([]string, error) {
	if len(versions) > 0 {
		tags := make([]string, len(versions))
		for i, v := range versions {
			tags[i] = "py" + v
		}
		return tags, nil
	}

	result, err := c.runTool(ctx, cmdrun.Command{
		Args: []string{
			c.Python, "-c",
			`import sys; print("py%d%d" % sys.version_info[:2])`,
		},
		SuppressOutput: true,
	}, "python version query")
	if err != nil {
		return nil, err
	}
	tag := lastLine(result.Stdout)
	if tag == "" {
		return nil, newError(KindTool, "python version query produced no output")
	}
	return []string{tag}, nil
}

// pythonRequires aggregates the Requires-Python constraints declared
// by the downloaded wheels, comma-joined in sorted order.
func pythonRequires(wheelsDir string) (string, error) {
	names, err := wheels.List(wheelsDir)
	if err != nil {
		return "", err
	}

	seen := map[string]bool{}
	for _, name := range names {
		requires, err := wheelRequiresPython(filepath.Join(wheelsDir, name))
		if err != nil {
			return "", fmt.Errorf("reading metadata of %s: %w", name, err)
		}
		if requires != "" {
			seen[requires] = true
		}
	}

	constraints := make([]string, 0, len(seen))
	for constraint := range seen {
		constraints = append(constraints, constraint)
	}
	sort.Strings(constraints)
	return strings.Join(constraints, ","), nil
}

// wheelRequiresPython extracts the Requires-Python header from a
// wheel's dist-info METADATA file. Wheels are zip containers.
func wheelRequiresPython(wheelPath string) (string, error) {
	r, err := zip.OpenReader(wheelPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, file := range r.File {
		if !strings.HasSuffix(file.Name, ".dist-info/METADATA") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		requires := scanRequiresPython(rc)
		rc.Close()
		return requires, nil
	}
	return "", nil
}

func scanRequiresPython(r io.Reader) string {
	const header = "Requires-Python:"
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		// Headers end at the first blank line; the body may contain
		// anything, including header-shaped text.
		if line == "" {
			return ""
		}
		if strings.HasPrefix(line, header) {
			return strings.TrimSpace(line[len(header):])
		}
	}
	return ""
}

// makeVenv creates a throwaway virtual environment with pip seeded.
func (c Context) makeVenv(ctx context.Context, dir string) error {
	c.Logger.Debug("creating virtual environment", "dir", dir)
	_, err := c.runTool(ctx, cmdrun.Command{
		Args:           []string{c.Python, "-m", "venv", dir},
		SuppressOutput: true,
	}, "venv creation")
	return err
}

// checkInstalled reports whether the package shows up in the
// environment's pip freeze output.
func (c Context) checkInstalled(ctx context.Context, packageName, venv string) (bool, error) {
	result, err := c.runTool(ctx, cmdrun.Command{
		Args:           append(c.pipArgv(venv), "freeze"),
		SuppressOutput: true,
	}, "pip freeze")
	if err != nil {
		return false, err
	}
	installed := freezeLists(result.Stdout, packageName)
	if installed {
		c.Logger.Debug("package is installed", "package", packageName, "venv", venv)
	} else {
		c.Logger.Debug("package is not installed", "package", packageName, "venv", venv)
	}
	return installed, nil
}

// freezeLists reports whether a pip freeze listing pins the package.
// freeze prints dash-normalized names, so both the declared spelling
// and its dash form are accepted, anchored on "==" so a name that is
// a prefix of another package never matches.
func freezeLists(freeze, packageName string) bool {
	freeze = strings.ToLower(freeze)
	name := strings.ToLower(packageName)
	if strings.Contains(freeze, name+"==") {
		return true
	}
	return strings.Contains(freeze, strings.ReplaceAll(name, "_", "-")+"==")
}
