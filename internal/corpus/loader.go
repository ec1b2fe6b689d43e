// Package corpus loads ingestion corpora: a JSON array of objects or
// JSON Lines with one object per line. Entry order is preserved.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/recdex/internal/domain"
	"github.com/kailas-cloud/recdex/internal/domain/document"
)

// maxLineSize bounds one JSON Lines entry.
const maxLineSize = 16 << 20

// LoadFile reads a corpus from path.
func LoadFile(path string) ([]document.Raw, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	docs, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return docs, nil
}

// Load reads a corpus, detecting the format from the first non-space byte.
func Load(r io.Reader) ([]document.Raw, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []document.Raw{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	if first == '[' {
		return loadArray(br)
	}
	return loadLines(br)
}

// Decode parses a JSON array corpus already held in memory.
func Decode(data []byte) ([]document.Raw, error) {
	return loadArray(bytes.NewReader(data))
}

func loadArray(r io.Reader) ([]document.Raw, error) {
	var entries []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: corpus is not a JSON array: %v", domain.ErrInvalidArgument, err)
	}
	if !atEOF(dec) {
		return nil, fmt.Errorf("%w: unexpected data after the corpus array", domain.ErrInvalidArgument)
	}
	docs := make([]document.Raw, 0, len(entries))
	for i, entry := range entries {
		doc, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadLines(r io.Reader) ([]document.Raw, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	docs := make([]document.Raw, 0)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		doc, err := decodeEntry(b)
		if err != nil {
			return nil, fmt.Errorf("line %d (entry %d): %w", line, len(docs), err)
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return docs, nil
}

func decodeEntry(b []byte) (document.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc document.Raw
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: entry is not a JSON object: %v", domain.ErrInvalidArgument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: entry is null", domain.ErrInvalidArgument)
	}
	if !atEOF(dec) {
		return nil, fmt.Errorf("%w: unexpected data after the entry object", domain.ErrInvalidArgument)
	}
	return doc, nil
}

// atEOF reports whether only whitespace remains in the decoder input.
func atEOF(dec *json.Decoder) bool {
	_, err := dec.Token()
	return errors.Is(err, io.EOF)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
