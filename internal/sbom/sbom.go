// Package sbom holds the subset of the SPDX 2.x JSON document model that the
// reports read: the document name, the packages it describes, and their
// external CPE references.
package sbom

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Relationship types and reference categories read from SPDX documents.
const (
	RelationshipDescribes = "DESCRIBES"
	RefTypeCPE22          = "cpe22Type"
	RefTypeCPE23          = "cpe23Type"
	DocumentID            = "SPDXRef-DOCUMENT"
)

// ErrEmpty is returned for documents without any content.
var ErrEmpty = errors.New("empty sbom document")

// Document is a decoded SPDX document.
type Document struct {
	SPDXVersion       string         `json:"spdxVersion"`
	SPDXID            string         `json:"SPDXID"`
	Name              string         `json:"name"`
	DocumentDescribes []string       `json:"documentDescribes"`
	Packages          []Package      `json:"packages"`
	Relationships     []Relationship `json:"relationships"`

	byID map[string]int
}

// Package is one SPDX package.
type Package struct {
	SPDXID       string        `json:"SPDXID"`
	Name         string        `json:"name"`
	VersionInfo  string        `json:"versionInfo"`
	ExternalRefs []ExternalRef `json:"externalRefs"`
}

// ExternalRef is a package reference such as a CPE or purl.
type ExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

// Relationship links two SPDX elements.
type Relationship struct {
	SPDXElementID      string `json:"spdxElementId"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSPDXElement string `json:"relatedSpdxElement"`
}

// Decode parses an SPDX JSON document.
func Decode(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode spdx: %w", err)
	}
	doc.index()
	return &doc, nil
}

func (d *Document) index() {
	d.byID = make(map[string]int, len(d.Packages))
	for i, pkg := range d.Packages {
		if _, exists := d.byID[pkg.SPDXID]; !exists {
			d.byID[pkg.SPDXID] = i
		}
	}
}

// MainPackageIDs returns the ids of the packages the document describes. The
// documentDescribes list wins; DESCRIBES relationships from the document
// element are the fallback.
func (d *Document) MainPackageIDs() []string {
	if len(d.DocumentDescribes) > 0 {
		return d.DocumentDescribes
	}
	docID := d.SPDXID
	if docID == "" {
		docID = DocumentID
	}
	var ids []string
	for _, rel := range d.Relationships {
		if rel.RelationshipType == RelationshipDescribes && rel.SPDXElementID == docID {
			ids = append(ids, rel.RelatedSPDXElement)
		}
	}
	return ids
}

// Package returns the package with the given SPDX id.
func (d *Document) Package(id string) (*Package, bool) {
	if d.byID == nil {
		d.index()
	}
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return &d.Packages[i], true
}

// MainPackage pairs a described id with its package, if the document defines it.
type MainPackage struct {
	ID      string
	Package *Package
}

// MainPackages resolves MainPackageIDs against the package list. Unknown ids
// are returned with a nil Package.
func (d *Document) MainPackages() []MainPackage {
	ids := d.MainPackageIDs()
	out := make([]MainPackage, 0, len(ids))
	for _, id := range ids {
		pkg, _ := d.Package(id)
		out = append(out, MainPackage{ID: id, Package: pkg})
	}
	return out
}

// CPEs returns the locators of the package's CPE references in document order.
func (p *Package) CPEs() []string {
	var out []string
	for _, ref := range p.ExternalRefs {
		if ref.ReferenceType == RefTypeCPE22 || ref.ReferenceType == RefTypeCPE23 {
			out = append(out, ref.ReferenceLocator)
		}
	}
	return out
}
