package cache

// ScopedKeyer prefixes every key of an inner Keyer. The API server scopes
// keys per scene so that deleting a scene can be reasoned about per prefix:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "scene:"+id+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DatasetKey(contentHash string, opts DatasetKeyOpts) string {
	return k.prefix + k.inner.DatasetKey(contentHash, opts)
}

func (k *ScopedKeyer) FrameKey(documentHash string) string {
	return k.prefix + k.inner.FrameKey(documentHash)
}

func (k *ScopedKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(frameHash, opts)
}
