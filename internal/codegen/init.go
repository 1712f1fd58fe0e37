package codegen

import (
	"github.com/glbind/glbind/internal/codegen/cheader"
)

// DefaultMarkers is the marker table used by the glbind binary
var DefaultMarkers = NewMarkers()

func init() {
	DefaultMarkers.Register(cheader.MainMarker, func(opts Options) Generator {
		return cheader.NewGenerator(cheader.Options{
			MaxFeatureVersion: opts.MaxFeatureVersion,
			Logger:            opts.Logger,
		})
	})
}
