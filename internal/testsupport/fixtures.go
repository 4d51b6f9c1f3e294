package testsupport

import (
	"encoding/json"
	"testing"
)

// SPDXPackage describes one package in a generated SPDX document.
type SPDXPackage struct {
	ID   string
	Name string
	CPEs []string
}

// SPDXDocument renders a minimal SPDX JSON document whose documentDescribes
// lists the ids in main.
func SPDXDocument(t testing.TB, name string, main []string, packages ...SPDXPackage) []byte {
	t.Helper()

	type ref struct {
		Category string `json:"referenceCategory"`
		Type     string `json:"referenceType"`
		Locator  string `json:"referenceLocator"`
	}
	type pkg struct {
		ID   string `json:"SPDXID"`
		Name string `json:"name"`
		Refs []ref  `json:"externalRefs,omitempty"`
	}
	doc := struct {
		Version   string   `json:"spdxVersion"`
		Name      string   `json:"name"`
		Describes []string `json:"documentDescribes,omitempty"`
		Packages  []pkg    `json:"packages"`
	}{Version: "SPDX-2.3", Name: name, Describes: main}
	for _, p := range packages {
		entry := pkg{ID: p.ID, Name: p.Name}
		for _, cpe := range p.CPEs {
			refType := "cpe23Type"
			if len(cpe) > 5 && cpe[:5] == "cpe:/" {
				refType = "cpe22Type"
			}
			entry.Refs = append(entry.Refs, ref{Category: "SECURITY", Type: refType, Locator: cpe})
		}
		doc.Packages = append(doc.Packages, entry)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal spdx: %v", err)
	}
	return data
}
