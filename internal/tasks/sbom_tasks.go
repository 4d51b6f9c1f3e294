package tasks

import (
	"context"
	"log/slog"
	"sort"

	"sbomstat/internal/dictionary"
	"sbomstat/internal/logging"
	"sbomstat/internal/pipeline"
	"sbomstat/internal/report"
	"sbomstat/internal/sbom"
)

// UniqueNames collects the distinct SPDX document names.
type UniqueNames struct {
	freq *report.Frequency
}

// NewUniqueNames returns an empty handler.
func NewUniqueNames() *UniqueNames {
	f := report.NewFrequency("SBOM document names", "names")
	f.KeysOnly = true
	return &UniqueNames{freq: f}
}

// Process implements pipeline.Handler.
func (h *UniqueNames) Process(_ context.Context, progress pipeline.Progress, doc *sbom.Document) error {
	progress.SetMessage(doc.Name)
	h.freq.Add(doc.Name)
	h.freq.Processed++
	return nil
}

// Finalize returns the collected names.
func (h *UniqueNames) Finalize() *report.Frequency {
	return h.freq
}

// UniqueMainPackages counts the names of the packages each document describes.
type UniqueMainPackages struct {
	freq   *report.Frequency
	logger *slog.Logger
}

// NewUniqueMainPackages returns an empty handler.
func NewUniqueMainPackages(logger *slog.Logger) *UniqueMainPackages {
	return &UniqueMainPackages{
		freq:   report.NewFrequency("Main packages", "entries"),
		logger: componentLogger(logger),
	}
}

// Process implements pipeline.Handler.
func (h *UniqueMainPackages) Process(_ context.Context, progress pipeline.Progress, doc *sbom.Document) error {
	progress.SetMessage(doc.Name)
	h.freq.Processed++
	ids := uniqueIDs(doc.MainPackageIDs())
	if len(ids) == 0 {
		h.freq.Add(KeyMissingMainPackage)
		return nil
	}
	for _, id := range ids {
		pkg, ok := doc.Package(id)
		if !ok {
			h.logger.Warn("missing package", logging.String("package_id", id), logging.String("document", doc.Name))
			h.freq.Add(id)
			continue
		}
		h.freq.Add(pkg.Name)
	}
	return nil
}

// Finalize returns the package counts.
func (h *UniqueMainPackages) Finalize() *report.Frequency {
	return h.freq
}

// MainCPE counts the CPE references of each document's main packages.
type MainCPE struct {
	freq   *report.Frequency
	logger *slog.Logger
}

// NewMainCPE returns an empty handler.
func NewMainCPE(logger *slog.Logger) *MainCPE {
	return &MainCPE{
		freq:   report.NewFrequency("Main package CPEs", "entries"),
		logger: componentLogger(logger),
	}
}

// Process implements pipeline.Handler.
func (h *MainCPE) Process(_ context.Context, progress pipeline.Progress, doc *sbom.Document) error {
	progress.SetMessage(doc.Name)
	h.freq.Processed++
	eachMainCPE(h.logger, doc, h.freq.Add, func(locator string) string { return locator })
	return nil
}

// Finalize returns the CPE counts, sentinel keys included.
func (h *MainCPE) Finalize() *report.Frequency {
	return h.freq
}

// CPEs returns the distinct CPE strings seen, excluding sentinel keys.
func (h *MainCPE) CPEs() []string {
	return realKeys(h.freq)
}

// MainCPETitles counts dictionary titles of main package CPEs.
type MainCPETitles struct {
	freq       *report.Frequency
	logger     *slog.Logger
	dictionary *dictionary.Index
	language   string
}

// NewMainCPETitles returns an empty handler resolving titles in lang.
func NewMainCPETitles(logger *slog.Logger, index *dictionary.Index, lang string) *MainCPETitles {
	return &MainCPETitles{
		freq:       report.NewFrequency("Main package CPE titles", "entries"),
		logger:     componentLogger(logger),
		dictionary: index,
		language:   lang,
	}
}

// Process implements pipeline.Handler.
func (h *MainCPETitles) Process(_ context.Context, progress pipeline.Progress, doc *sbom.Document) error {
	progress.SetMessage(doc.Name)
	h.freq.Processed++
	eachMainCPE(h.logger, doc, h.freq.Add, func(locator string) string {
		title, ok := h.dictionary.LookupTitle(locator, h.language)
		if !ok {
			return KeyMissingTitle
		}
		return title
	})
	return nil
}

// Finalize returns the title counts.
func (h *MainCPETitles) Finalize() *report.Frequency {
	return h.freq
}

// eachMainCPE applies the shared main-package CPE walk, recording key(locator)
// for every CPE reference and a sentinel where none can be found.
func eachMainCPE(logger *slog.Logger, doc *sbom.Document, add func(string), key func(string) string) {
	ids := uniqueIDs(doc.MainPackageIDs())
	if len(ids) == 0 {
		add(KeyMissingMainPackage)
		return
	}
	for _, id := range ids {
		pkg, ok := doc.Package(id)
		if !ok {
			logger.Warn("missing package", logging.String("package_id", id), logging.String("document", doc.Name))
			add(KeyInvalidPackageID)
			continue
		}
		cpes := pkg.CPEs()
		if len(cpes) == 0 {
			add(KeyNoCPE)
			continue
		}
		for _, locator := range cpes {
			add(key(locator))
		}
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func realKeys(f *report.Frequency) []string {
	keys := f.Keys()
	out := keys[:0]
	for _, key := range keys {
		if !isSentinel(key) {
			out = append(out, key)
		}
	}
	return out
}

func componentLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return logging.NewComponentLogger(logger, "tasks")
}
