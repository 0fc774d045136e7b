package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/geodoc-io/geodoc/internal/index"
	"github.com/geodoc-io/geodoc/internal/schema"
	gderrors "github.com/geodoc-io/geodoc/pkg/errors"
)

// Open reads the container in dir, verifies it, and reconstructs the
// committed Store, schema included. All failures wrap ErrIOFailure.
func Open(dir string) (*index.Store, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading index file %s: %v", gderrors.ErrIOFailure, path, err)
	}
	if len(data) < headerSize+footerSize {
		return nil, fmt.Errorf("%w: index file %s truncated", gderrors.ErrIOFailure, path)
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != magicBytes {
		return nil, fmt.Errorf("%w: invalid index file: bad magic bytes %x", gderrors.ErrIOFailure, magic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported index format version %d", gderrors.ErrIOFailure, version)
	}
	h := header{
		Magic:        magic,
		Version:      version,
		DocCount:     binary.LittleEndian.Uint32(data[8:12]),
		SchemaOffset: int64(binary.LittleEndian.Uint64(data[16:24])),
		SchemaSize:   int64(binary.LittleEndian.Uint64(data[24:32])),
		TablesOffset: int64(binary.LittleEndian.Uint64(data[32:40])),
		TablesSize:   int64(binary.LittleEndian.Uint64(data[40:48])),
	}

	end := h.TablesOffset + h.TablesSize
	if h.SchemaOffset != headerSize || end+footerSize != int64(len(data)) {
		return nil, fmt.Errorf("%w: index file %s has inconsistent section offsets", gderrors.ErrIOFailure, path)
	}
	schemaData := data[h.SchemaOffset : h.SchemaOffset+h.SchemaSize]
	tablesData := data[h.TablesOffset:end]

	checksum := crc32.ChecksumIEEE(schemaData)
	checksum = crc32.Update(checksum, crc32.IEEETable, tablesData)
	if stored := binary.LittleEndian.Uint32(data[end : end+4]); stored != checksum {
		return nil, fmt.Errorf("%w: index file %s checksum mismatch", gderrors.ErrIOFailure, path)
	}

	var fields []schema.Field
	if err := json.Unmarshal(schemaData, &fields); err != nil {
		return nil, fmt.Errorf("%w: parsing schema section: %v", gderrors.ErrIOFailure, err)
	}
	s, err := schema.New(fields...)
	if err != nil {
		return nil, fmt.Errorf("%w: rebuilding schema: %v", gderrors.ErrIOFailure, err)
	}

	var tables index.Tables
	if err := json.Unmarshal(tablesData, &tables); err != nil {
		return nil, fmt.Errorf("%w: parsing tables section: %v", gderrors.ErrIOFailure, err)
	}
	store := index.NewStore(s, tables)
	if store.DocumentCount() != int(h.DocCount) {
		return nil, fmt.Errorf("%w: index file %s document count mismatch", gderrors.ErrIOFailure, path)
	}
	return store, nil
}
