package build

import "time"

// PhaseIndexing is the progress phase for native Go extraction. Each plugin
// reports under its own phase, "plugin:" + name.
const PhaseIndexing = "indexing"

// PluginPhase names the progress phase for one plugin.
func PluginPhase(name string) string {
	return "plugin:" + name
}

// Events are optional observer hooks. All are fire-and-forget: the engine
// consumes no return value and applies no back-pressure. Within one phase,
// (current, total) is monotonically increasing and starts its own 1..N
// sequence.
type Events struct {
	OnProgress      func(phase string, current, total int, file string)
	OnBuildStart    func()
	OnBuildComplete func(symbolCount int, elapsed time.Duration)
	OnBuildError    func(err error)
}

func (e *Events) progress(phase string, current, total int, file string) {
	if e != nil && e.OnProgress != nil {
		e.OnProgress(phase, current, total, file)
	}
}

func (e *Events) buildStart() {
	if e != nil && e.OnBuildStart != nil {
		e.OnBuildStart()
	}
}

func (e *Events) buildComplete(symbolCount int, elapsed time.Duration) {
	if e != nil && e.OnBuildComplete != nil {
		e.OnBuildComplete(symbolCount, elapsed)
	}
}

func (e *Events) buildError(err error) {
	if e != nil && e.OnBuildError != nil {
		e.OnBuildError(err)
	}
}
