package osm

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrMissingKey is returned when a tag record beneath a node or way has no k attribute
	ErrMissingKey = errors.New("tag without k attribute")

	// ErrUnsupportedFormat is returned by OpenFile for extensions it cannot read
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrMalformed is returned for documents that are not a single well-formed root element
	ErrMalformed = errors.New("malformed osm xml")
)

// Scanner streams the nodes and ways of an OSM extract in document order.
// Usage mirrors bufio.Scanner: call Scan until it returns false, then check Err.
type Scanner interface {
	Scan() bool
	Element() *Element
	Err() error
	Close() error
}

// XMLScanner reads an OSM XML document token by token.
// Only the elements still open are kept in memory.
type XMLScanner struct {
	ctx     context.Context
	decoder *xml.Decoder

	depth      int
	rootSeen   bool
	rootClosed bool

	open    []*Element
	current *Element
	err     error
}

var _ Scanner = (*XMLScanner)(nil)

// NewXMLScanner returns a scanner reading OSM XML from r
func NewXMLScanner(ctx context.Context, r io.Reader) *XMLScanner {
	return &XMLScanner{
		ctx:     ctx,
		decoder: xml.NewDecoder(r),
	}
}

// Scan advances to the next completed node or way
func (s *XMLScanner) Scan() bool {
	if s.err != nil {
		return false
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}

		tok, err := s.decoder.Token()
		if err == io.EOF {
			if !s.rootSeen {
				s.err = s.malformed("no root element")
			}
			return false
		}
		if err != nil {
			s.err = fmt.Errorf("parsing osm xml: %w", err)
			return false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if s.depth == 0 && s.rootClosed {
				s.err = s.malformed("content after root element")
				return false
			}
			s.depth++
			s.rootSeen = true
			if err := s.start(t); err != nil {
				s.err = err
				return false
			}

		case xml.EndElement:
			s.depth--
			if s.depth == 0 {
				s.rootClosed = true
			}
			if !isElementName(t.Name.Local) || len(s.open) == 0 {
				continue
			}
			last := len(s.open) - 1
			s.current = s.open[last]
			s.open = s.open[:last]
			return true

		case xml.CharData:
			if s.depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				s.err = s.malformed("text outside root element")
				return false
			}
		}
	}
}

func (s *XMLScanner) malformed(reason string) error {
	line, _ := s.decoder.InputPos()
	return fmt.Errorf("%w: %s (line %d)", ErrMalformed, reason, line)
}

func (s *XMLScanner) start(t xml.StartElement) error {
	switch {
	case isElementName(t.Name.Local):
		e := &Element{Type: TypeNode}
		if t.Name.Local == string(TypeWay) {
			e.Type = TypeWay
		}
		if id, ok := attr(t, "id"); ok {
			e.ID, _ = strconv.ParseInt(id, 10, 64)
		}
		s.open = append(s.open, e)

	case t.Name.Local == "tag" && len(s.open) > 0:
		key, ok := attr(t, "k")
		if !ok {
			line, _ := s.decoder.InputPos()
			return fmt.Errorf("%w (line %d)", ErrMissingKey, line)
		}
		tag := Tag{Key: key}
		tag.Value, tag.hasValue = attr(t, "v")

		// a tag belongs to every node or way that encloses it
		for _, e := range s.open {
			e.Tags = append(e.Tags, tag)
		}
	}
	return nil
}

// Element returns the element produced by the last successful Scan
func (s *XMLScanner) Element() *Element {
	return s.current
}

// Err returns the first non-EOF error encountered
func (s *XMLScanner) Err() error {
	return s.err
}

// Close releases the scanner. It does not close the underlying reader.
func (s *XMLScanner) Close() error {
	s.open = nil
	s.current = nil
	return nil
}

func isElementName(name string) bool {
	return name == string(TypeNode) || name == string(TypeWay)
}

func attr(t xml.StartElement, name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// fileScanner closes the file together with the scanner
type fileScanner struct {
	Scanner
	file *os.File
}

func (f *fileScanner) Close() error {
	serr := f.Scanner.Close()
	if err := f.file.Close(); err != nil {
		return err
	}
	return serr
}

// Format identifies the encoding of an extract
type Format string

const (
	FormatXML Format = "xml"
	FormatPBF Format = "pbf"
)

// DetectFormat chooses a reader from the file extension
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".osm", ".xml", "":
		return FormatXML, nil
	case ".pbf":
		return FormatPBF, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// OpenFile opens path and returns a scanner for its format.
// Closing the scanner closes the file.
func OpenFile(ctx context.Context, path string) (Scanner, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	var s Scanner
	switch format {
	case FormatPBF:
		s = NewPBFScanner(ctx, f)
	default:
		s = NewXMLScanner(ctx, f)
	}

	return Monitor(&fileScanner{Scanner: s, file: f}, format), nil
}
