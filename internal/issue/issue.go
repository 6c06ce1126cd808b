// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	UnsupportedURLSchemeId Id = iota + 1
	MissingSetupPyId
	CorruptArchiveId
	ToolInvocationFailedId
	DestinationExistsId
	PlatformUnsupportedId
	ArchiveInvalidId
	RepairToolMissingId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // external references that might help the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	unsupportedURLSchemeIssue = &Issue{
		id: UnsupportedURLSchemeId,
		mdMsg: `
# Unsupported source URL!

Only ` + "`file://`, `http://` and `https://`" + ` URLs can be used as a
source locator.

## Things you can try:
- Download the archive yourself and pass its local path
- Host the source on a plain HTTP(S) server`,
	}

	missingSetupPyIssue = &Issue{
		id: MissingSetupPyId,
		mdMsg: `
# Source directory has no setup.py!

A local source directory must contain a setup.py file so the package
name and version can be derived from it.

## Things you can try:
- Point wheelhouse at the directory that actually holds setup.py
- Pass the package as ` + "`name==version`" + ` to resolve it from the index
  instead of a local path`,
	}

	corruptArchiveIssue = &Issue{
		id: CorruptArchiveId,
		mdMsg: `
# Unreadable archive!

The file could not be read as a zip or tar.gz container, or it does not
hold the expected single component directory with a package.json
descriptor inside.

## Things you can try:
- Verify the download completed (compare file sizes)
- Re-create the archive with ` + "`wheelhouse create`" + ``,
	}

	toolInvocationFailedIssue = &Issue{
		id: ToolInvocationFailedId,
		mdMsg: `
# An external tool failed!

pip, the virtualenv builder, or auditwheel exited non-zero. The
captured output above is the tool's own diagnosis and is always
reported verbatim, exactly once.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the full command line
- Run the printed command yourself to reproduce the failure`,
	}

	destinationExistsIssue = &Issue{
		id: DestinationExistsId,
		mdMsg: `
# Destination archive already exists!

wheelhouse never overwrites an existing archive unless asked to.

## Things you can try:
- Pass ` + "`--force`" + ` to replace the existing archive
- Pass ` + "`--output-directory`" + ` to write somewhere else`,
	}

	platformUnsupportedIssue = &Issue{
		id: PlatformUnsupportedId,
		mdMsg: `
# Platform unsupported!

The archive declares a supported platform that does not match this
machine. Exact Linux tags require an identical platform string;
manylinux tags only waive libc concerns, never a different
architecture; and no cross-OS install is ever allowed.

## Things you can try:
- Install on a machine matching the declared platform
- Repair the archive on its build host: ` + "`wheelhouse repair`" + `
  rewrites exact Linux wheels into portable manylinux ones
- Pass ` + "`--ignore-platform`" + ` if you know the binaries are compatible`,
		docLinks: []HttpLink{
			"https://peps.python.org/pep-0513/",
		},
	}

	archiveInvalidIssue = &Issue{
		id: ArchiveInvalidId,
		mdMsg: `
# Archive failed validation!

One or more declared wheels are missing from the archive, or the
component did not install into a throwaway virtualenv.

## Things you can try:
- Re-create the archive; the wheel set may have been modified in place
- Inspect the extraction directory printed above`,
	}

	repairToolMissingIssue = &Issue{
		id: RepairToolMissingId,
		mdMsg: `
# auditwheel not found!

Repair rewrites non-portable Linux wheels with auditwheel, which must
be installed and on the PATH.

## Things you can try:
- ` + "`pip install auditwheel`" + ` (Linux only)`,
		docLinks: []HttpLink{
			"https://github.com/pypa/auditwheel",
		},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file contains syntax errors or invalid values.

## Things you can try:
- Check the error message above for the specific field
- Remove the config file to fall back to defaults
- Run with ` + "`--verbose`" + ` for more details`,
	}

	issues = map[Id]*Issue{
		unsupportedURLSchemeIssue.Id(): unsupportedURLSchemeIssue,
		missingSetupPyIssue.Id():       missingSetupPyIssue,
		corruptArchiveIssue.Id():       corruptArchiveIssue,
		toolInvocationFailedIssue.Id(): toolInvocationFailedIssue,
		destinationExistsIssue.Id():    destinationExistsIssue,
		platformUnsupportedIssue.Id():  platformUnsupportedIssue,
		archiveInvalidIssue.Id():       archiveInvalidIssue,
		repairToolMissingIssue.Id():    repairToolMissingIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
