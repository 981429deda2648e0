// Package hash provides the checksums used by the corpus file format.
//
// Every identifier frame in an id column carries a CRC32-Castagnoli checksum
// of its stored payload. Go's hash/crc32 uses SSE4.2 / ARM CRC instructions
// for this polynomial when available.
package hash
