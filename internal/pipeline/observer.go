package pipeline

// Stage names a phase that reports progress.
type Stage string

const (
	StageUnpack  Stage = "unpack"
	StageProcess Stage = "process"
)

// Outcome classifies a finished unpack item.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeDecodeFailed Outcome = "decode_failed"
	OutcomeReadFailed   Outcome = "read_failed"
)

// Observer receives progress notifications. Implementations must be safe for
// concurrent use because unpack notifications arrive from worker goroutines.
// Observers never influence control flow.
type Observer interface {
	StageStarted(stage Stage, total int)
	ItemDone(stage Stage, outcome Outcome)
	StageMessage(stage Stage, msg string)
	StageFinished(stage Stage)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) StageStarted(Stage, int)    {}
func (NopObserver) ItemDone(Stage, Outcome)    {}
func (NopObserver) StageMessage(Stage, string) {}
func (NopObserver) StageFinished(Stage)        {}

type multiObserver []Observer

// Observers fans notifications out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return NopObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiObserver) StageStarted(stage Stage, total int) {
	for _, o := range m {
		o.StageStarted(stage, total)
	}
}

func (m multiObserver) ItemDone(stage Stage, outcome Outcome) {
	for _, o := range m {
		o.ItemDone(stage, outcome)
	}
}

func (m multiObserver) StageMessage(stage Stage, msg string) {
	for _, o := range m {
		o.StageMessage(stage, msg)
	}
}

func (m multiObserver) StageFinished(stage Stage) {
	for _, o := range m {
		o.StageFinished(stage)
	}
}

type stageProgress struct {
	observer Observer
	stage    Stage
}

func (p stageProgress) SetMessage(msg string) {
	p.observer.StageMessage(p.stage, msg)
}
