// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"

	"wheelhouse/pkg/metadata"
	"wheelhouse/pkg/source"
)

// Show returns the descriptor of a wheelhouse archive.
func (c Context) Show(ctx context.Context, locator string) (*metadata.Descriptor, error) {
	c.Logger.Debug("retrieving descriptor", "source", locator)

	resolved, err := source.Get(ctx, c.Logger, c.Index, locator)
	if err != nil {
		return nil, wrapError(KindLocator, err, "resolving source %s", locator)
	}
	defer resolved.Cleanup()

	if resolved.Dir == "" {
		return nil, newError(KindLocator, "%s is not a local or remote archive", locator)
	}

	descriptor, err := metadata.Read(resolved.Dir)
	if err != nil {
		return nil, wrapError(KindLocator, err, "reading archive descriptor")
	}
	return descriptor, nil
}
