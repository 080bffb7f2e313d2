package segment

import "github.com/matzehuels/blockseg/pkg/errors"

// Default propagation parameters.
const (
	DefaultThreshold    = 0.9
	DefaultShadeWeight  = 0.15
	DefaultShadingFloor = 0.7
)

// Options controls label propagation.
type Options struct {
	// Threshold is the minimum similarity for a neighbor to join a region.
	Threshold float64 `json:"threshold,omitempty"`

	// ColorShading derives neighbor colors by scaling the source color with
	// how far the similarity exceeds Threshold, instead of copying it.
	ColorShading bool `json:"color_shading,omitempty"`

	// ShadeWeight is the per-step brightness factor used when shading.
	// It must lie in (0, 1]; zero selects DefaultShadeWeight. To keep
	// source colors unchanged, leave ColorShading off.
	ShadeWeight float64 `json:"shade_weight,omitempty"`

	// ShadingFloor replaces Threshold as the acceptance bar for unlabeled
	// neighbors when shading is on.
	ShadingFloor float64 `json:"shading_floor,omitempty"`
}

// SetDefaults fills zero fields with their defaults. A zero ShadeWeight is
// treated as unset.
func (o *Options) SetDefaults() {
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.ShadeWeight == 0 {
		o.ShadeWeight = DefaultShadeWeight
	}
	if o.ShadingFloor == 0 {
		o.ShadingFloor = DefaultShadingFloor
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if err := errors.ValidateThreshold("threshold", o.Threshold); err != nil {
		return err
	}
	if err := errors.ValidateThreshold("shading floor", o.ShadingFloor); err != nil {
		return err
	}
	return errors.ValidateWeight("shade weight", o.ShadeWeight)
}
