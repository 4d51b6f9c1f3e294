package tasks

import (
	"context"

	"sbomstat/internal/csaf"
	"sbomstat/internal/pipeline"
	"sbomstat/internal/report"
)

// AdvisoryCPE counts every CPE in each advisory's product tree.
type AdvisoryCPE struct {
	freq *report.Frequency
}

// NewAdvisoryCPE returns an empty handler.
func NewAdvisoryCPE() *AdvisoryCPE {
	return &AdvisoryCPE{freq: report.NewFrequency("Advisory CPEs", "entries")}
}

// Process implements pipeline.Handler.
func (h *AdvisoryCPE) Process(_ context.Context, progress pipeline.Progress, adv *csaf.Advisory) error {
	progress.SetMessage(adv.ID())
	h.freq.Processed++
	for _, cpe := range adv.CollectCPEs() {
		h.freq.Add(cpe)
	}
	return nil
}

// Finalize returns the CPE counts.
func (h *AdvisoryCPE) Finalize() *report.Frequency {
	return h.freq
}

// CPEs returns the distinct CPE strings seen.
func (h *AdvisoryCPE) CPEs() []string {
	return h.freq.Keys()
}
