package audio

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// paStream abstracts a PortAudio stream for testing.
type paStream interface {
	Start() error
	Stop() error
	Close() error
	Read() error
}

// MicSource captures from the OS default (or a configured index) input
// device. A capture goroutine blocks on the PortAudio stream and deposits
// each completed block into a single-slot, newest-wins buffer; ReadBlock
// never blocks the caller.
type MicSource struct {
	deviceIdx int

	mu     sync.Mutex
	stream paStream
	latest []float32 // nil until the first block arrives

	running atomic.Bool
	wg      sync.WaitGroup

	ptMu sync.Mutex
	pt   PassthroughWriter
}

// NewMicSource builds a microphone source bound to the given PortAudio
// device index, or the host default input when idx < 0.
func NewMicSource(idx int) *MicSource {
	return &MicSource{deviceIdx: idx}
}

func (m *MicSource) Start() error {
	if m.running.Load() {
		return nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}
	dev, err := resolveDevice(devices, m.deviceIdx, portaudio.DefaultInputDevice)
	if err != nil {
		return err
	}

	buf := make([]float32, BlockSize)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      SampleRate,
		FramesPerBuffer: BlockSize,
	}
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	m.mu.Lock()
	m.stream = stream
	m.latest = nil
	m.mu.Unlock()

	m.running.Store(true)

	m.wg.Add(1)
	go func() { defer m.wg.Done(); m.captureLoop(buf) }()

	log.Printf("[audio] mic started device=%s", dev.Name)
	return nil
}

// resolveDevice returns the device at idx if valid, otherwise calls
// fallback.
func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

func (m *MicSource) captureLoop(buf []float32) {
	for m.running.Load() {
		if err := m.stream.Read(); err != nil {
			if m.running.Load() {
				log.Printf("[audio] mic capture read: %v", err)
			}
			return
		}

		m.ptMu.Lock()
		pt := m.pt
		m.ptMu.Unlock()
		if pt != nil {
			cp := make([]float32, len(buf))
			copy(cp, buf)
			pt.Write(cp)
		}

		block := make([]float32, len(buf))
		copy(block, buf)

		m.mu.Lock()
		m.latest = block
		m.mu.Unlock()
	}
}

// Stop stops the stream first to unblock any in-flight Read, waits for
// the goroutine to exit, then closes the stream. Closing first would free
// the native stream object while captureLoop might still be touching it.
func (m *MicSource) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}

	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream != nil {
		stream.Stop()
	}

	m.wg.Wait()

	m.mu.Lock()
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	m.latest = nil
	m.mu.Unlock()

	log.Println("[audio] mic stopped")
}

func (m *MicSource) ReadBlock() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return make([]float32, BlockSize)
	}
	block := m.latest
	m.latest = nil
	return block
}

func (m *MicSource) IsActive() bool {
	return m.running.Load()
}

func (m *MicSource) Passthrough(w PassthroughWriter) {
	m.ptMu.Lock()
	m.pt = w
	m.ptMu.Unlock()
}
