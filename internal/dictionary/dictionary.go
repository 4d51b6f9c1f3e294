// Package dictionary loads the NVD CPE dictionary and answers title lookups.
//
// The dictionary is a large XML document (usually gzip-compressed); Load
// streams it item by item so only the name and titles of each entry are kept
// in memory. Entries are reachable both by their name exactly as published and
// by the canonical URI rendering of that name, so lookups tolerate trivial
// differences such as case or a trailing wildcard.
package dictionary

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"sbomstat/internal/cpe"
	"sbomstat/internal/decompress"
	"sbomstat/internal/logging"
)

// ErrNoItems is returned when a dictionary file contains no cpe-item elements.
var ErrNoItems = errors.New("dictionary contains no cpe items")

// Generator describes the producer of the dictionary file.
type Generator struct {
	ProductName    string `xml:"product_name"`
	ProductVersion string `xml:"product_version"`
	SchemaVersion  string `xml:"schema_version"`
	Timestamp      string `xml:"timestamp"`
}

// Title is a human readable product name in one language.
type Title struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

// Item is one dictionary entry.
type Item struct {
	Name       string  `xml:"name,attr"`
	Deprecated bool    `xml:"deprecated,attr"`
	Titles     []Title `xml:"title"`
	CPE23      struct {
		Name string `xml:"name,attr"`
	} `xml:"cpe23-item"`
}

// Index is a read-only name to item mapping.
type Index struct {
	Generator Generator
	items     []*Item
	byName    map[string]*Item
}

// Len returns the number of items loaded.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.items)
}

// Lookup returns the item for name, trying the raw string first and then
// its canonical form.
func (x *Index) Lookup(name string) (*Item, bool) {
	if x == nil {
		return nil, false
	}
	if item, ok := x.byName[name]; ok {
		return item, true
	}
	if key, ok := canonicalKey(name); ok {
		item, ok := x.byName[key]
		return item, ok
	}
	return nil, false
}

// LookupTitle returns the title of name in lang. An exact tag match wins;
// otherwise the first title sharing the base language is used. lang accepts
// both en_US and en-US spellings.
func (x *Index) LookupTitle(name, lang string) (string, bool) {
	item, ok := x.Lookup(name)
	if !ok {
		return "", false
	}
	return item.Title(lang)
}

// Title picks the best title for lang from the item.
func (item *Item) Title(lang string) (string, bool) {
	want := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	for _, title := range item.Titles {
		if strings.EqualFold(strings.ReplaceAll(title.Lang, "_", "-"), want) {
			return strings.TrimSpace(title.Value), true
		}
	}
	wantTag, err := language.Parse(want)
	if err != nil {
		return "", false
	}
	wantBase, _ := wantTag.Base()
	for _, title := range item.Titles {
		tag, err := language.Parse(strings.ReplaceAll(title.Lang, "_", "-"))
		if err != nil {
			continue
		}
		if base, _ := tag.Base(); base == wantBase {
			return strings.TrimSpace(title.Value), true
		}
	}
	return "", false
}

func canonicalKey(name string) (string, bool) {
	id, err := cpe.Parse(name)
	if err != nil {
		return "", false
	}
	return id.Key(), true
}

// New builds an index from items. It is used by Load and by tests.
func New(generator Generator, items []*Item) *Index {
	x := &Index{Generator: generator, byName: make(map[string]*Item, len(items)*2)}
	for _, item := range items {
		x.add(item)
	}
	return x
}

func (x *Index) add(item *Item) {
	x.items = append(x.items, item)
	if _, exists := x.byName[item.Name]; !exists {
		x.byName[item.Name] = item
	}
	if key, ok := canonicalKey(item.Name); ok {
		if _, exists := x.byName[key]; !exists {
			x.byName[key] = item
		}
	}
}

// Load reads the dictionary at path, decompressing by suffix.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "dictionary"))
	logger.Info("loading cpe dictionary", logging.String(logging.FieldPath, path))

	rc, err := decompress.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer rc.Close()

	counter := &countingReader{r: rc}
	x, err := Read(ctx, counter)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	logger.Info("loaded cpe dictionary",
		logging.Int("items", x.Len()),
		logging.String("xml_size", humanize.Bytes(uint64(counter.n))),
		logging.String("generator_version", x.Generator.ProductVersion),
	)
	return x, nil
}

// Read streams a cpe-list document from r.
func Read(ctx context.Context, r io.Reader) (*Index, error) {
	x := New(Generator{}, nil)
	decoder := xml.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "generator":
			if err := decoder.DecodeElement(&x.Generator, &start); err != nil {
				return nil, fmt.Errorf("decode generator: %w", err)
			}
		case "cpe-item":
			item := new(Item)
			if err := decoder.DecodeElement(item, &start); err != nil {
				return nil, fmt.Errorf("decode cpe-item: %w", err)
			}
			x.add(item)
		}
	}
	if x.Len() == 0 {
		return nil, ErrNoItems
	}
	return x, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
