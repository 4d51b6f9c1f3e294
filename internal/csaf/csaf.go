// Package csaf holds the subset of the CSAF 2.0 advisory model needed to
// collect the CPE identifiers in a product tree.
package csaf

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Advisory is a decoded CSAF document.
type Advisory struct {
	Document    Meta        `json:"document"`
	ProductTree ProductTree `json:"product_tree"`
}

// Meta carries the document header fields.
type Meta struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tracking Tracking `json:"tracking"`
}

// Tracking identifies the advisory.
type Tracking struct {
	ID string `json:"id"`
}

// ProductTree lists products by branch, by flat name, and by relationship.
type ProductTree struct {
	Branches         []Branch       `json:"branches"`
	FullProductNames []FullProduct  `json:"full_product_names"`
	Relationships    []Relationship `json:"relationships"`
}

// Branch is one node of the recursive product hierarchy.
type Branch struct {
	Category string       `json:"category"`
	Name     string       `json:"name"`
	Product  *FullProduct `json:"product"`
	Branches []Branch     `json:"branches"`
}

// FullProduct names a product and its identification helper.
type FullProduct struct {
	Name      string  `json:"name"`
	ProductID string  `json:"product_id"`
	Helper    *Helper `json:"product_identification_helper"`
}

// Helper carries machine-readable product identifiers.
type Helper struct {
	CPE  string `json:"cpe"`
	PURL string `json:"purl"`
}

// Relationship combines two products into a new one.
type Relationship struct {
	Category        string      `json:"category"`
	FullProductName FullProduct `json:"full_product_name"`
}

// Decode parses a CSAF JSON document.
func Decode(data []byte) (*Advisory, error) {
	var adv Advisory
	if err := json.Unmarshal(data, &adv); err != nil {
		return nil, fmt.Errorf("decode csaf: %w", err)
	}
	return &adv, nil
}

// ID returns the tracking id.
func (a *Advisory) ID() string {
	return a.Document.Tracking.ID
}

// CollectCPEs returns every CPE found in the product tree, sorted and unique.
func (a *Advisory) CollectCPEs() []string {
	seen := make(map[string]struct{})
	add := func(p *FullProduct) {
		if p == nil || p.Helper == nil {
			return
		}
		if cpe := strings.TrimSpace(p.Helper.CPE); cpe != "" {
			seen[cpe] = struct{}{}
		}
	}
	var walk func([]Branch)
	walk = func(branches []Branch) {
		for i := range branches {
			add(branches[i].Product)
			walk(branches[i].Branches)
		}
	}
	walk(a.ProductTree.Branches)
	for i := range a.ProductTree.FullProductNames {
		add(&a.ProductTree.FullProductNames[i])
	}
	for i := range a.ProductTree.Relationships {
		add(&a.ProductTree.Relationships[i].FullProductName)
	}

	out := make([]string, 0, len(seen))
	for cpe := range seen {
		out = append(out, cpe)
	}
	sort.Strings(out)
	return out
}
