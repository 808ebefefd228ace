package q2file

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"unsafe"
)

type PakHeader struct {
	Magic  [4]byte // magic number ("PACK")
	Offset uint32  // offset of the directory
	Length uint32  // length of the directory
}

type PakFile struct {
	Filename [56]byte
	Offset   uint32
	Length   uint32
}

// Name returns the path of the file inside the archive
func (f PakFile) Name() string {
	return byteToString(f.Filename[:])
}

// PAK is the directory of a PAK archive
type PAK struct {
	r     io.ReaderAt
	files map[string]PakFile
}

// LoadQ2PAK reads the directory of a PAK archive
func LoadQ2PAK(r io.ReaderAt) (*PAK, error) {
	pakHeader := PakHeader{}

	headerReader := io.NewSectionReader(r, 0, int64(unsafe.Sizeof(pakHeader)))
	if err := binary.Read(headerReader, binary.LittleEndian, &pakHeader); err != nil {
		return nil, fmt.Errorf("PAK header: %w", err)
	}

	if !bytes.Equal([]byte("PACK"), pakHeader.Magic[:]) {
		return nil, fmt.Errorf("PAK header %q: %w", pakHeader.Magic[:], ErrBadMagic)
	}

	// Each directory entry is 64 bytes
	entries, err := readLump[PakFile](r, Lump{Offset: pakHeader.Offset, Length: pakHeader.Length}, "PAK files")
	if err != nil {
		return nil, err
	}

	pak := &PAK{r: r, files: make(map[string]PakFile, len(entries))}
	for _, entry := range entries {
		pak.files[entry.Name()] = entry
	}
	return pak, nil
}

// Files returns the sorted names of all files in the archive
func (pak *PAK) Files() []string {
	names := make([]string, 0, len(pak.files))
	for name := range pak.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns a reader over one file of the archive
func (pak *PAK) Open(filename string) (*io.SectionReader, error) {
	entry, exists := pak.files[filename]
	if !exists {
		return nil, fmt.Errorf("%v: %w", filename, ErrNotInPAK)
	}
	return io.NewSectionReader(pak.r, int64(entry.Offset), int64(entry.Length)), nil
}

// LoadQ2BSPFromPAK loads a map stored inside a PAK archive
func LoadQ2BSPFromPAK(pak *PAK, bspFilename string) (*MapData, error) {
	bspReader, err := pak.Open(bspFilename)
	if err != nil {
		return nil, err
	}
	return LoadQ2BSP(bspReader)
}
