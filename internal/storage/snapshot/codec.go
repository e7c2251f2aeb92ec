// Package snapshot encodes saved games and persists them by name.
//
// An encoded snapshot is a zstd stream holding one JSON header line followed
// by the JSON payload. The header carries the format version and the xxhash64
// of the payload so that truncated or corrupted saves are rejected on load.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Version is the snapshot format written by Marshal.
const Version = 1

const (
	// MaxPayloadSize bounds the decoded payload of a snapshot.
	MaxPayloadSize = 256 << 20
	// maxHeaderSize bounds the header line; it is also the read buffer size.
	maxHeaderSize = 1 << 20
)

var (
	// ErrChecksum is returned when the payload does not match its header checksum.
	ErrChecksum = errors.New("snapshot checksum mismatch")
	// ErrUnsupportedVersion is returned for headers written by an unknown format.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrNotFound is returned by a Store when no snapshot has the requested name.
	ErrNotFound = errors.New("snapshot not found")
	// ErrTooLarge is returned for payloads above MaxPayloadSize.
	ErrTooLarge = errors.New("snapshot too large")
)

// Header is the first line of every encoded snapshot.
type Header struct {
	Version  int    `json:"version"`
	Checksum uint64 `json:"xxhash64"`
	Size     int    `json:"size"`
}

// Marshal writes v to w as a compressed, checksummed snapshot.
//
// Precondition: v must be encodable by encoding/json.
// Postcondition: On success w holds one complete zstd frame; payloads above
// MaxPayloadSize are refused with ErrTooLarge before anything is written.
func Marshal(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding snapshot payload: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}
	hdr, err := json.Marshal(Header{
		Version:  Version,
		Checksum: xxhash.Sum64(payload),
		Size:     len(payload),
	})
	if err != nil {
		return fmt.Errorf("encoding snapshot header: %w", err)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(zw, 1<<20)
	if _, err := bw.Write(append(hdr, '\n')); err != nil {
		_ = zw.Close()
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		_ = zw.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Unmarshal reads a snapshot written by Marshal from r into v.
//
// Postcondition: Returns an error wrapping ErrChecksum if the payload was
// altered, ErrUnsupportedVersion for an unknown header version, or ErrTooLarge
// if the header declares more than MaxPayloadSize bytes. At most the declared
// size plus one byte of payload is read.
func Unmarshal(r io.Reader, v any) error {
	zr, err := zstd.NewReader(r, zstd.WithDecoderMaxMemory(MaxPayloadSize+maxHeaderSize))
	if err != nil {
		return fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()

	br := bufio.NewReaderSize(zr, maxHeaderSize)
	line, err := br.ReadSlice('\n')
	if err != nil {
		return fmt.Errorf("reading snapshot header: %w", err)
	}
	var hdr Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &hdr); err != nil {
		return fmt.Errorf("decoding snapshot header: %w", err)
	}
	if hdr.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}
	if hdr.Size < 0 || hdr.Size > MaxPayloadSize {
		return fmt.Errorf("%w: header declares %d bytes", ErrTooLarge, hdr.Size)
	}

	// One byte past the declared size is enough to detect a longer payload.
	payload, err := io.ReadAll(io.LimitReader(br, int64(hdr.Size)+1))
	if err != nil {
		return fmt.Errorf("reading snapshot payload: %w", err)
	}
	if len(payload) != hdr.Size || xxhash.Sum64(payload) != hdr.Checksum {
		return ErrChecksum
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decoding snapshot payload: %w", err)
	}
	return nil
}

// Encode is Marshal into a byte slice.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is Unmarshal from a byte slice.
func Decode(data []byte, v any) error {
	return Unmarshal(bytes.NewReader(data), v)
}
