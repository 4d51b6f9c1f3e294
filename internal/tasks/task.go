package tasks

import (
	"sbomstat/internal/csaf"
	"sbomstat/internal/pipeline"
	"sbomstat/internal/report"
	"sbomstat/internal/sbom"
)

// Task is a handler that yields a frequency report once the run is over.
type Task[T any] interface {
	pipeline.Handler[T]
	Finalize() *report.Frequency
}

var (
	_ Task[*sbom.Document] = (*UniqueNames)(nil)
	_ Task[*sbom.Document] = (*UniqueMainPackages)(nil)
	_ Task[*sbom.Document] = (*MainCPE)(nil)
	_ Task[*sbom.Document] = (*MainCPETitles)(nil)
	_ Task[*csaf.Advisory] = (*AdvisoryCPE)(nil)
)
