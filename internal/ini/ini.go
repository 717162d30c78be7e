// Package ini wraps gopkg.in/ini.v1 with the typed getters the scenario and rules readers use:
// integers, booleans in the engine's yes/no spelling, fixed-point numbers, enumerated names and
// numbered text blocks. Sections are matched case-insensitively; entry names keep their case.
package ini

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rasim/simcore/internal/fixed"
	"github.com/rasim/simcore/internal/model/core"

	goini "gopkg.in/ini.v1"
)

// Result classifies the outcome of loading a file.
type Result int

const (
	// LoadFailed means the file could not be read or parsed.
	LoadFailed Result = iota
	// LoadOK means the file parsed and its digest (if any) matched.
	LoadOK
	// LoadDigestMismatch means the file parsed but its [Digest] section did not match the content.
	LoadDigestMismatch
)

func (r Result) String() string {
	switch r {
	case LoadOK:
		return "ok"
	case LoadDigestMismatch:
		return "digest mismatch"
	}
	return "failed"
}

const digestSection = "Digest"

// ErrEmpty is returned for a zero-length file.
var ErrEmpty = errors.New("ini: empty file")

// File is a parsed INI file.
type File struct {
	cfg  *goini.File
	name string
}

// Load reads and parses an INI file from disk.
func Load(path string) (*File, Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadFailed, fmt.Errorf("reading %s: %w", path, err)
	}
	f, res, err := Parse(data)
	if f != nil {
		f.name = path
	}
	return f, res, err
}

// Parse parses INI text. When a [Digest] section is present the SHA-1 of everything before it
// is compared against the stored base64 digest.
func Parse(data []byte) (*File, Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, LoadFailed, ErrEmpty
	}

	cfg, err := goini.LoadSources(goini.LoadOptions{
		InsensitiveSections:     true,
		IgnoreContinuation:      true,
		SkipUnrecognizableLines: true,
		AllowBooleanKeys:        true,
	}, data)
	if err != nil {
		return nil, LoadFailed, fmt.Errorf("parsing ini: %w", err)
	}

	f := &File{cfg: cfg}

	if !f.HasSection(digestSection) {
		return f, LoadOK, nil
	}

	content := contentBeforeDigest(data)
	sum := sha1.Sum(content)
	actual := strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")
	stored := strings.TrimRight(f.TextBlockJoined(digestSection, ""), "=")
	if actual != stored {
		return f, LoadDigestMismatch, nil
	}
	return f, LoadOK, nil
}

// New returns an empty file, useful for building data in code.
func New() *File {
	return &File{cfg: goini.Empty(goini.LoadOptions{InsensitiveSections: true})}
}

func contentBeforeDigest(data []byte) []byte {
	lines := bytes.SplitAfter(data, []byte("\n"))
	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(string(line))
		if strings.EqualFold(trimmed, "["+digestSection+"]") {
			return data[:offset]
		}
		offset += len(line)
	}
	return data
}

// Name returns the path the file was loaded from, if any.
func (f *File) Name() string { return f.name }

func (f *File) section(name string) *goini.Section {
	sec, err := f.cfg.GetSection(name)
	if err != nil {
		return nil
	}
	return sec
}

func (f *File) key(section, entry string) *goini.Key {
	sec := f.section(section)
	if sec == nil {
		return nil
	}
	if sec.HasKey(entry) {
		return sec.Key(entry)
	}
	for _, k := range sec.Keys() {
		if strings.EqualFold(k.Name(), entry) {
			return k
		}
	}
	return nil
}

// HasSection reports whether the section exists.
func (f *File) HasSection(section string) bool {
	return f.section(section) != nil
}

// Sections lists section names in file order, excluding the implicit default section.
func (f *File) Sections() []string {
	var names []string
	for _, s := range f.cfg.Sections() {
		if s.Name() == goini.DefaultSection {
			continue
		}
		names = append(names, s.Name())
	}
	return names
}

// Entries lists the entry names of a section in file order.
func (f *File) Entries(section string) []string {
	sec := f.section(section)
	if sec == nil {
		return nil
	}
	return sec.KeyStrings()
}

// EntryCount returns the number of entries in a section.
func (f *File) EntryCount(section string) int {
	sec := f.section(section)
	if sec == nil {
		return 0
	}
	return len(sec.Keys())
}

// Has reports whether an entry is present.
func (f *File) Has(section, entry string) bool {
	return f.key(section, entry) != nil
}

// GetString returns the raw value or def when absent or empty.
func (f *File) GetString(section, entry, def string) string {
	k := f.key(section, entry)
	if k == nil {
		return def
	}
	v := strings.TrimSpace(k.String())
	if v == "" {
		return def
	}
	return v
}

// GetInt returns an integer value or def.
func (f *File) GetInt(section, entry string, def int) int {
	v := f.GetString(section, entry, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetBool reads yes/no, true/false or 1/0 by first character.
func (f *File) GetBool(section, entry string, def bool) bool {
	v := f.GetString(section, entry, "")
	if v == "" {
		return def
	}
	switch v[0] {
	case 'y', 'Y', 't', 'T', '1':
		return true
	case 'n', 'N', 'f', 'F', '0':
		return false
	}
	return def
}

// GetFixed reads a fixed-point value or def.
func (f *File) GetFixed(section, entry string, def fixed.Fixed) fixed.Fixed {
	v := f.GetString(section, entry, "")
	if v == "" {
		return def
	}
	x, err := fixed.Parse(v)
	if err != nil {
		return def
	}
	return x
}

// GetHouse reads a house name or def.
func (f *File) GetHouse(section, entry string, def core.HouseType) core.HouseType {
	v := f.GetString(section, entry, "")
	if v == "" {
		return def
	}
	if h := core.HouseFromName(v); h != core.HouseNone {
		return h
	}
	return def
}

// GetTheater reads a theater name or def.
func (f *File) GetTheater(section, entry string, def core.TheaterType) core.TheaterType {
	v := f.GetString(section, entry, "")
	if v == "" {
		return def
	}
	if t := core.TheaterFromName(v); t != core.TheaterNone {
		return t
	}
	return def
}

// TextBlock joins every entry of a section with single spaces, in file order.
func (f *File) TextBlock(section string) string {
	return f.TextBlockJoined(section, " ")
}

// TextBlockJoined joins every entry value of a section with sep.
func (f *File) TextBlockJoined(section, sep string) string {
	sec := f.section(section)
	if sec == nil {
		return ""
	}
	parts := make([]string, 0, len(sec.Keys()))
	for _, k := range sec.Keys() {
		parts = append(parts, strings.TrimSpace(k.String()))
	}
	return strings.Join(parts, sep)
}

// PutString sets an entry, creating the section as needed.
func (f *File) PutString(section, entry, value string) {
	sec := f.cfg.Section(section)
	_, _ = sec.NewKey(entry, value)
}

// PutInt sets an integer entry.
func (f *File) PutInt(section, entry string, value int) {
	f.PutString(section, entry, strconv.Itoa(value))
}

// PutBool sets a yes/no entry.
func (f *File) PutBool(section, entry string, value bool) {
	if value {
		f.PutString(section, entry, "yes")
		return
	}
	f.PutString(section, entry, "no")
}

// WriteTo serialises the file.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	return f.cfg.WriteTo(w)
}
