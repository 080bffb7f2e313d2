package cache

// Keyer derives cache keys.
type Keyer interface {
	// SegmentKey identifies a label map for an image hash and the options
	// that influence propagation.
	SegmentKey(imageHash string, opts SegmentKeyOpts) string

	// ArtifactKey identifies a rendered output of a label map.
	ArtifactKey(labelHash string, opts ArtifactKeyOpts) string
}

// SegmentKeyOpts holds every option that changes a segmentation result.
type SegmentKeyOpts struct {
	BlockHeight  int     `json:"bh"`
	BlockWidth   int     `json:"bw"`
	Grayscale    bool    `json:"gray,omitempty"`
	ColorShading bool    `json:"shade,omitempty"`
	Threshold    float64 `json:"t"`
	ShadeWeight  float64 `json:"sw"`
	ShadingFloor float64 `json:"sf"`
	Seed         uint64  `json:"seed"`
	Oracle       string  `json:"oracle"`
	Page         int     `json:"page,omitempty"`
	DPI          float64 `json:"dpi,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Materialize bool    `json:"materialize"`
	Overlay     float64 `json:"overlay,omitempty"`
	Quality     int     `json:"quality,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SegmentKey implements Keyer.
func (DefaultKeyer) SegmentKey(imageHash string, opts SegmentKeyOpts) string {
	return hashKey("segment", imageHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(labelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", labelHash, opts)
}
