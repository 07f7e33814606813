package compress

import (
	"fmt"
	"strconv"
	"strings"
)

// Compress encodes and decodes payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
	// Name is the value published as the content encoding.
	Name() string
}

var (
	_ Compress = Identity{}
	_ Compress = (*GZip)(nil)
	_ Compress = LZ4{}
	_ Compress = Brotli{}
)

// Identity leaves payloads untouched.
type Identity struct{}

func (Identity) Encode(data []byte) ([]byte, error) { return data, nil }
func (Identity) Decode(data []byte) ([]byte, error) { return data, nil }
func (Identity) Name() string                       { return "identity" }

// New returns the codec registered under name. An empty name selects Identity.
// gzip takes an optional level suffix, as in "gzip:9".
func New(name string) (Compress, error) {
	name, param, hasParam := strings.Cut(strings.ToLower(name), ":")
	if hasParam && name != "gzip" {
		return nil, fmt.Errorf("compression %s takes no level", name)
	}

	switch name {
	case "", "none", "nop", "identity":
		return Identity{}, nil
	case "gzip":
		if !hasParam {
			return NewGZip(), nil
		}
		level, err := strconv.Atoi(param)
		if err != nil {
			return nil, fmt.Errorf("gzip level %q: %w", param, err)
		}
		return NewGZipLevel(level)
	case "lz4":
		return NewLZ4(), nil
	case "br", "brotli":
		return NewBrotli(), nil
	default:
		return nil, fmt.Errorf("unknown compression: %s", name)
	}
}
