package session

// Observer receives controller state changes. RecordingChanged and
// PlaybackChanged fire only on an actual change.
//
// Callbacks run with the controller lock held, BufferChanged possibly on a
// device thread. They must not call back into the Controller.
type Observer interface {
	RecordingChanged(recording bool)
	PlaybackChanged(playing bool)
	// BufferChanged is called with every chunk appended to the recording.
	BufferChanged(chunk []byte)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) RecordingChanged(bool) {}
func (NopObserver) PlaybackChanged(bool) {}
func (NopObserver) BufferChanged([]byte) {}

// Observers fans notifications out in order.
type Observers []Observer

func (o Observers) RecordingChanged(recording bool) {
	for _, obs := range o {
		obs.RecordingChanged(recording)
	}
}

func (o Observers) PlaybackChanged(playing bool) {
	for _, obs := range o {
		obs.PlaybackChanged(playing)
	}
}

func (o Observers) BufferChanged(chunk []byte) {
	for _, obs := range o {
		obs.BufferChanged(chunk)
	}
}
