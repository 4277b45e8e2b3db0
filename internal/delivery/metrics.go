package delivery

import "time"

// Recorder receives delivery events for metrics collection.
type Recorder interface {
	ProbeCompleted(provider ProviderID, up bool, elapsed time.Duration)
	CacheLookup(hit bool)
	LinksDropped(reason string, n int)
}

// Reasons passed to Recorder.LinksDropped.
const (
	DropProviderDown  = "provider_down"
	DropUndecryptable = "undecryptable"
)

type nopRecorder struct{}

func (nopRecorder) ProbeCompleted(ProviderID, bool, time.Duration) {}
func (nopRecorder) CacheLookup(bool)                               {}
func (nopRecorder) LinksDropped(string, int)                       {}
