// Package posters bundles the visualizations shipped with the installation.
package posters

import (
	"github.com/teslashibe/reactive-signs/pkg/poster"
	"github.com/teslashibe/reactive-signs/pkg/posters/blob"
	"github.com/teslashibe/reactive-signs/pkg/posters/digits"
	"github.com/teslashibe/reactive-signs/pkg/posters/grid"
)

// Registry returns every bundled poster in key order
func Registry() *poster.Registry {
	return poster.NewRegistry(
		blob.Definition(),
		grid.Definition(),
		digits.Definition(),
	)
}
