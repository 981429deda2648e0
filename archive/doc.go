// Package archive backs up corpora to a blob store and restores them.
//
// An archive is a zstd-compressed tar stream holding the committed prefix of
// every column followed by meta.json. Backups may run while a Table appends
// to the corpus: the manifest is read first and only the bytes it commits are
// copied, so the archive always restores to a consistent corpus.
package archive
