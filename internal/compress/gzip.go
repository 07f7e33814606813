package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"sync"
)

// GZip compresses with a fixed level and reuses its writers across calls.
type GZip struct {
	level   int
	writers *sync.Pool
}

func NewGZip() *GZip {
	codec, _ := NewGZipLevel(gzip.BestSpeed)
	return codec
}

// NewGZipLevel accepts the levels understood by compress/gzip, HuffmanOnly included.
func NewGZipLevel(level int) (*GZip, error) {
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	return &GZip{
		level: level,
		writers: &sync.Pool{New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		}},
	}, nil
}

func (g *GZip) Level() int {
	return g.level
}

func (g *GZip) Encode(data []byte) ([]byte, error) {
	w := g.writers.Get().(*gzip.Writer)
	defer g.writers.Put(w)

	var buf bytes.Buffer
	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *GZip) Decode(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (g *GZip) Name() string {
	return "gzip"
}
