package writer

import "github.com/apache/arrow-go/v18/parquet/compress"

// Compression names the Parquet codec forwarded to the wrapped
// encoder.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionSnappy Compression = "snappy"
	CompressionGzip   Compression = "gzip"
	CompressionLz4    Compression = "lz4"
	CompressionZstd   Compression = "zstd"
)

func (c Compression) codec() compress.Compression {
	switch c {
	case CompressionSnappy:
		return compress.Codecs.Snappy
	case CompressionGzip:
		return compress.Codecs.Gzip
	case CompressionLz4:
		return compress.Codecs.Lz4Raw
	case CompressionZstd:
		return compress.Codecs.Zstd
	default:
		return compress.Codecs.Uncompressed
	}
}

// Config is the writer configuration recognized at construction
// (§4.5, §6). BatchSize == 0 means adaptive sizing is enabled; any
// positive value disables it.
type Config struct {
	Compression     Compression `yaml:"compression" json:"compression"`
	BatchSize       int         `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	MemoryThreshold int64       `yaml:"memory_threshold" json:"memory_threshold"`
	SampleSize      int         `yaml:"sample_size" json:"sample_size"`
	MinSamples      int         `yaml:"min_samples" json:"min_samples"`
	MinBatchSize    int         `yaml:"min_batch_size" json:"min_batch_size"`
}

// DefaultConfig returns the defaults named in §4.5: 64 MiB memory
// threshold, a 100-row reservoir, 10 samples before the first adaptive
// adjustment, and a floor of 10 rows per batch.
func DefaultConfig() Config {
	return Config{
		Compression:     CompressionSnappy,
		MemoryThreshold: 64 * 1024 * 1024,
		SampleSize:      100,
		MinSamples:      10,
		MinBatchSize:    10,
	}
}

func (c Config) adaptive() bool { return c.BatchSize <= 0 }
