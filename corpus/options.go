package corpus

// Options configures a corpus at creation time.
type Options struct {
	// WithNorms stores a norm column next to the vectors.
	WithNorms bool
	// Compression applied to identifier frames.
	Compression Compression
	// BlockSize is the number of identifiers per frame written by a Builder.
	BlockSize int
}

// DefaultOptions are used when Create is called without option functions.
var DefaultOptions = Options{
	WithNorms:   true,
	Compression: CompressionLZ4,
	BlockSize:   1024,
}

func resolveOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultOptions.BlockSize
	}
	return opts
}
