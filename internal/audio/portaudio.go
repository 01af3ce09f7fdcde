package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// findDevice resolves a configured device name. An empty name selects the
// system default.
func findDevice(name string, input bool) (*portaudio.DeviceInfo, error) {
	if name == "" {
		if input {
			return portaudio.DefaultInputDevice()
		}
		return portaudio.DefaultOutputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name != name {
			continue
		}
		if (input && d.MaxInputChannels > 0) || (!input && d.MaxOutputChannels > 0) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", name)
}

// listDevices enumerates PortAudio devices.
func listDevices() ([]AudioDevice, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	result := make([]AudioDevice, 0, len(devices))
	for _, d := range devices {
		result = append(result, AudioDevice{
			ID:      d.Name,
			Name:    d.Name,
			Input:   d.MaxInputChannels > 0,
			Output:  d.MaxOutputChannels > 0,
			Default: d == defaultIn || d == defaultOut,
		})
	}
	return result, nil
}

// StandardCapture records mono 16 kHz through a PortAudio callback stream,
// delivering one chunk every ChunkDuration.
type StandardCapture struct {
	deviceName string
	log        zerolog.Logger

	mu      sync.Mutex
	stream  *portaudio.Stream
	onChunk func([]byte)
}

// NewStandardCapture creates the push-model capture back-end.
func NewStandardCapture(deviceName string, log zerolog.Logger) *StandardCapture {
	return &StandardCapture{
		deviceName: deviceName,
		log:        log.With().Str("component", "standard_capture").Logger(),
	}
}

func (c *StandardCapture) Path() Path { return PathStandard }

// OnChunk installs the chunk handler. It runs on the PortAudio thread.
func (c *StandardCapture) OnChunk(fn func(chunk []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChunk = fn
}

func (c *StandardCapture) Start(f Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return nil
	}

	device, err := findDevice(c.deviceName, true)
	if err != nil {
		return deviceErr("open", PathStandard, err)
	}

	onChunk := c.onChunk
	framesPerChunk := f.BytesFor(ChunkDuration) / f.BlockAlign()
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: f.Channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(f.SampleRate),
		FramesPerBuffer: framesPerChunk,
	}, func(in []int16) {
		if onChunk != nil {
			onChunk(int16sToBytes(in))
		}
	})
	if err != nil {
		return deviceErr("open", PathStandard, fmt.Errorf("failed to open audio stream: %w", err))
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return deviceErr("start", PathStandard, fmt.Errorf("failed to start audio stream: %w", err))
	}

	c.stream = stream
	c.log.Debug().Str("device", device.Name).Int("frames_per_chunk", framesPerChunk).Msg("Capture started")
	return nil
}

// Stop waits for the callback in flight to return before closing the stream.
func (c *StandardCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil

	if err := stream.Stop(); err != nil {
		stream.Close()
		return deviceErr("stop", PathStandard, err)
	}
	if err := stream.Close(); err != nil {
		return deviceErr("close", PathStandard, err)
	}
	c.log.Debug().Msg("Capture stopped")
	return nil
}

// portAudioSink plays feeder chunks through a blocking PortAudio stream.
type portAudioSink struct {
	deviceName string

	stream *portaudio.Stream
	buffer []int16
	src    *chunkFeeder
}

func (s *portAudioSink) open(f Format, src *chunkFeeder) error {
	device, err := findDevice(s.deviceName, false)
	if err != nil {
		return err
	}

	s.buffer = make([]int16, f.BytesFor(ChunkDuration)/BytesPerSample)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: f.Channels,
			Latency:  device.DefaultHighOutputLatency,
		},
		SampleRate:      float64(f.SampleRate),
		FramesPerBuffer: len(s.buffer) / f.Channels,
	}, s.buffer)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	s.stream = stream
	s.src = src
	return nil
}

func (s *portAudioSink) run(stop <-chan struct{}) error {
	defer s.stream.Close()

	for {
		select {
		case <-stop:
			return s.stream.Abort()
		default:
		}

		chunk := s.src.Next()
		if chunk == nil {
			break
		}
		bytesToInt16s(s.buffer, chunk)
		if err := s.stream.Write(); err != nil {
			s.stream.Abort()
			return err
		}
	}

	// Stop blocks until the queued buffers have been played
	return s.stream.Stop()
}
