package cache

// Keyer derives cache keys. Every key embeds a hash of everything that
// influences the cached value, so changing an option never serves a stale
// entry.
type Keyer interface {
	// DatasetKey is the key of a dataset parsed from content with the
	// given hash.
	DatasetKey(contentHash string, opts DatasetKeyOpts) string

	// FrameKey is the key of the frame synchronized from a scene
	// document with the given hash.
	FrameKey(documentHash string) string

	// ArtifactKey is the key of a rendered output of a frame.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// DatasetKeyOpts holds the import options that change a parsed dataset.
type DatasetKeyOpts struct {
	Format    string `json:"format"`
	Name      string `json:"name,omitempty"`
	Header    bool   `json:"header,omitempty"`
	RowLabels bool   `json:"row_labels,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Unit    float64 `json:"unit,omitempty"`
	Floor   bool    `json:"floor,omitempty"`
	Labels  bool    `json:"labels,omitempty"`
	Slice   bool    `json:"slice,omitempty"`
	Title   string  `json:"title,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Compact bool    `json:"compact,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) DatasetKey(contentHash string, opts DatasetKeyOpts) string {
	return hashKey(KeyTypeDataset, contentHash, opts)
}

func (DefaultKeyer) FrameKey(documentHash string) string {
	return hashKey(KeyTypeFrame, documentHash)
}

func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, frameHash, opts)
}
