// Package segment persists a committed index as a single binary container
// and reopens it read-only without replaying the build. The container is a
// fixed header, a JSON schema section, a JSON tables section, and a CRC
// footer; it is written to a temp file and renamed so a partial write is
// never observable as an index.
package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/geodoc-io/geodoc/internal/index"
)

// FileName is the single container file inside an index directory.
const FileName = "index.gdx"

const (
	magicBytes    uint32 = 0x47445831 // "GDX1"
	formatVersion uint32 = 1
	headerSize           = 48
	footerSize           = 8
)

type header struct {
	Magic        uint32
	Version      uint32
	DocCount     uint32
	SchemaOffset int64
	SchemaSize   int64
	TablesOffset int64
	TablesSize   int64
}

// Write atomically persists the committed store into dir, creating it if
// needed. It writes FileName via a .tmp file and renames on success.
func Write(dir string, store *index.Store) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	finalPath := filepath.Join(dir, FileName)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	defer f.Close()

	schemaData, err := json.Marshal(store.Schema().Fields())
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}
	tablesData, err := json.Marshal(store.Tables())
	if err != nil {
		return fmt.Errorf("marshaling index tables: %w", err)
	}

	h := header{
		Magic:        magicBytes,
		Version:      formatVersion,
		DocCount:     uint32(store.DocumentCount()),
		SchemaOffset: int64(headerSize),
		SchemaSize:   int64(len(schemaData)),
		TablesOffset: int64(headerSize + len(schemaData)),
		TablesSize:   int64(len(tablesData)),
	}
	headerBytes := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(headerBytes[0:4], h.Magic)
	binary.LittleEndian.PutUint32(headerBytes[4:8], h.Version)
	binary.LittleEndian.PutUint32(headerBytes[8:12], h.DocCount)
	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(h.SchemaOffset))
	binary.LittleEndian.PutUint64(headerBytes[24:32], uint64(h.SchemaSize))
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(h.TablesOffset))
	binary.LittleEndian.PutUint64(headerBytes[40:48], uint64(h.TablesSize))

	if _, err := f.Write(headerBytes); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := f.Write(schemaData); err != nil {
		return fmt.Errorf("writing schema section: %w", err)
	}
	if _, err := f.Write(tablesData); err != nil {
		return fmt.Errorf("writing tables section: %w", err)
	}

	checksum := crc32.ChecksumIEEE(schemaData)
	checksum = crc32.Update(checksum, crc32.IEEETable, tablesData)
	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint32(footer[0:4], checksum)
	if _, err := f.Write(footer); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing index file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming index file: %w", err)
	}
	return nil
}
