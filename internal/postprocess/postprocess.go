// Package postprocess runs registered post-processors over a mutable
// ExtractionResult in Early→Middle→Late stage order (spec.md §4.6). The
// registry shape mirrors internal/registry's priority-then-registration
// ordering, generalized here to a three-bucket pipeline since
// post-processors (unlike extractors) all run, rather than having one
// selected winner.
package postprocess

import (
	"fmt"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// Stage is one of the three fixed pipeline stages (spec.md §4.6).
type Stage int

const (
	Early Stage = iota
	Middle
	Late
)

// Processor is the post-processor plugin contract (spec.md §4.6).
type Processor interface {
	Name() string
	Initialize() error
	Shutdown() error

	ProcessingStage() Stage
	Priority() int
	// ShouldProcess defaults to true when a processor has no opinion.
	ShouldProcess(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) bool
	// Fatal reports whether this processor's failure should abort the
	// pipeline rather than being recorded non-fatally (spec.md §4.2).
	Fatal() bool

	Process(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error
}

// Pipeline holds the registered processors, grouped by stage.
type Pipeline struct {
	processors []Processor
}

// New returns an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Processors returns the pipeline's registered processors in
// registration order, for callers (Core's WithEmbedding option) that
// need to reach into a specific processor after construction.
func (p *Pipeline) Processors() []Processor {
	out := make([]Processor, len(p.processors))
	copy(out, p.processors)
	return out
}

// Register appends p, calling its Initialize hook.
func (p *Pipeline) Register(proc Processor) error {
	if err := proc.Initialize(); err != nil {
		return kerr.Plugin(proc.Name(), err)
	}
	p.processors = append(p.processors, proc)
	return nil
}

// Run executes every registered processor against result in
// Early→Middle→Late order, priority-descending then registration order
// within a stage (spec.md §4.6/§5).
func (p *Pipeline) Run(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	for _, stage := range []Stage{Early, Middle, Late} {
		ordered := p.orderedForStage(stage)
		for _, proc := range ordered {
			if !proc.ShouldProcess(result, cfg) {
				continue
			}
			if err := proc.Process(result, cfg); err != nil {
				if proc.Fatal() {
					return kerr.Plugin(proc.Name(), err)
				}
				if result.Metadata.Additional == nil {
					result.Metadata.Additional = make(map[string]any)
				}
				result.Metadata.Additional[fmt.Sprintf("%s_error", proc.Name())] = err.Error()
			}
		}
	}
	return nil
}

// orderedForStage returns the stage's processors sorted by descending
// priority, breaking ties by original registration order (a stable
// sort over the already-registration-ordered slice achieves this).
func (p *Pipeline) orderedForStage(stage Stage) []Processor {
	var matched []Processor
	for _, proc := range p.processors {
		if proc.ProcessingStage() == stage {
			matched = append(matched, proc)
		}
	}
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0 && matched[j-1].Priority() < matched[j].Priority(); j-- {
			matched[j-1], matched[j] = matched[j], matched[j-1]
		}
	}
	return matched
}
