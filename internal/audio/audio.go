package audio

// Capture defines the interface for a microphone back-end
type Capture interface {
	Path() Path
	Start(f Format) error
	// Stop halts capture and returns once the device stopped delivering data.
	// Calling Stop on a stopped capture is a no-op.
	Stop() error
}

// PushCapture is a capture back-end that delivers chunks from the device
// thread as they arrive. The handler must return quickly.
type PushCapture interface {
	Capture
	OnChunk(fn func(chunk []byte))
}

// PullCapture is a capture back-end that buffers internally and has to be
// drained periodically. Data is lost once the internal buffer fills up.
type PullCapture interface {
	Capture
	Pull() []byte
}

// Playback defines the interface for a speaker back-end
type Playback interface {
	Path() Path
	// Start plays data from its beginning. The standard path takes bare PCM,
	// the flexible path takes a whole WAV file and skips its header.
	Start(data []byte, f Format) error
	// IsPlaying reports whether audio is still queued. The flexible path
	// also feeds the device on every call.
	IsPlaying() bool
	Stop() error
	// SkipForward jumps ahead by SkipDuration when that much audio is left.
	SkipForward()
}

// AudioDevice represents an audio input or output device
type AudioDevice struct {
	ID      string
	Name    string
	Input   bool
	Output  bool
	Default bool
}
