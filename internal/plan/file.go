package plan

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks zstd-compressed plan files
const CompressedSuffix = ".zst"

// IsCompressed reports whether the path names a compressed plan
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedSuffix)
}

// Save writes the document, compressed when the path ends in .zst
func Save(path string, doc Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	data := buf.Bytes()
	if IsCompressed(path) {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("failed to create compressor: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

// Load reads a document, decompressing .zst files
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read plan: %w", err)
	}
	if IsCompressed(path) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return Document{}, fmt.Errorf("failed to create decompressor: %w", err)
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return Decode(bytes.NewReader(data))
}
