package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "blockseg:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SegmentKey generates a prefixed label map key.
func (k *ScopedKeyer) SegmentKey(imageHash string, opts SegmentKeyOpts) string {
	return k.prefix + k.inner.SegmentKey(imageHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(labelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(labelHash, opts)
}
