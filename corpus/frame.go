package corpus

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/neighborhood/internal/conv"
	"github.com/hupe1980/neighborhood/internal/hash"
)

// frameHeaderSize is count, raw_len, stored_len and crc, 4 bytes each.
// stored_len == 0 means the payload is stored verbatim (raw_len bytes).
const frameHeaderSize = 16

type frameHeader struct {
	count     uint32
	rawLen    uint32
	storedLen uint32
	crc       uint32
}

func (h frameHeader) payloadLen() int {
	if h.storedLen == 0 {
		return int(h.rawLen)
	}
	return int(h.storedLen)
}

// encodeFrame serializes ids as one frame.
func encodeFrame(ids []string, c Compression) ([]byte, error) {
	size := 0
	for _, id := range ids {
		size += binary.MaxVarintLen64 + len(id)
	}

	raw := make([]byte, 0, size)
	for _, id := range ids {
		raw = binary.AppendUvarint(raw, uint64(len(id)))
		raw = append(raw, id...)
	}

	payload := raw
	var storedLen uint32
	if c != CompressionNone {
		packed, err := compress(raw, c)
		if err != nil {
			return nil, fmt.Errorf("compress id frame: %w", err)
		}
		if packed != nil {
			payload = packed
			if storedLen, err = conv.IntToUint32(len(packed)); err != nil {
				return nil, fmt.Errorf("id frame: %w", err)
			}
		}
	}

	count, err := conv.IntToUint32(len(ids))
	if err != nil {
		return nil, fmt.Errorf("id frame: %w", err)
	}
	rawLen, err := conv.IntToUint32(len(raw))
	if err != nil {
		return nil, fmt.Errorf("id frame: %w", err)
	}

	out := make([]byte, frameHeaderSize, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], count)
	binary.LittleEndian.PutUint32(out[4:], rawLen)
	binary.LittleEndian.PutUint32(out[8:], storedLen)
	binary.LittleEndian.PutUint32(out[12:], hash.CRC32C(payload))
	return append(out, payload...), nil
}

func readFrameHeader(b []byte) (frameHeader, error) {
	if len(b) < frameHeaderSize {
		return frameHeader{}, fmt.Errorf("%w: truncated frame header", ErrCorrupted)
	}
	return frameHeader{
		count:     binary.LittleEndian.Uint32(b[0:]),
		rawLen:    binary.LittleEndian.Uint32(b[4:]),
		storedLen: binary.LittleEndian.Uint32(b[8:]),
		crc:       binary.LittleEndian.Uint32(b[12:]),
	}, nil
}

// decodeFrame parses the frame at the start of b and returns its identifiers
// and the total frame length. The returned strings never alias b.
func decodeFrame(b []byte, c Compression, dst []string) ([]string, int, error) {
	h, err := readFrameHeader(b)
	if err != nil {
		return nil, 0, err
	}

	end := frameHeaderSize + h.payloadLen()
	if end > len(b) {
		return nil, 0, fmt.Errorf("%w: frame payload exceeds column", ErrCorrupted)
	}
	payload := b[frameHeaderSize:end]
	if !hash.Verify(payload, h.crc) {
		return nil, 0, fmt.Errorf("%w: id frame checksum mismatch", ErrCorrupted)
	}

	raw := payload
	if h.storedLen != 0 {
		raw, err = decompress(payload, int(h.rawLen), c)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
	}

	ids := dst[:0]
	for len(raw) > 0 {
		v, n := binary.Uvarint(raw)
		if n <= 0 {
			return nil, 0, fmt.Errorf("%w: malformed identifier in frame", ErrCorrupted)
		}
		l, err := conv.Uint64ToInt(v)
		if err != nil || len(raw)-n < l {
			return nil, 0, fmt.Errorf("%w: malformed identifier in frame", ErrCorrupted)
		}
		ids = append(ids, string(raw[n:n+l]))
		raw = raw[n+l:]
	}
	if len(ids) != int(h.count) {
		return nil, 0, fmt.Errorf("%w: frame holds %d ids, header says %d", ErrCorrupted, len(ids), h.count)
	}

	return ids, end, nil
}
