package audio

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	btChannels      = 2
	btBytesPerFrame = btChannels * 2 // S16LE stereo
	btRingCap       = SampleRate * btBytesPerFrame // ~1s of raw bytes

	// killGrace is how long Stop waits for the capture child to exit after
	// SIGTERM before abandoning it.
	killGrace = time.Second
)

// captureCommand builds the child process that forwards a BlueZ A2DP sink
// to raw PCM on stdout. parecord against the bluez source PCM is the
// simplest command that lands as raw S16LE on a pipe without a WAV
// container.
func captureCommand(deviceAddr string) *exec.Cmd {
	cmd := exec.Command("parecord",
		"--raw",
		"--format=s16le",
		fmt.Sprintf("--rate=%d", SampleRate),
		fmt.Sprintf("--channels=%d", btChannels),
		"-d", "bluez_source."+dbusAddrToALSA(deviceAddr),
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}

func dbusAddrToALSA(addr string) string {
	out := make([]byte, 0, len(addr))
	for _, c := range addr {
		if c == ':' {
			out = append(out, '_')
		} else {
			out = append(out, byte(c))
		}
	}
	return string(out)
}

// BluetoothSource captures raw S16LE stereo PCM from a child process
// attached to a BlueZ A2DP sink, downmixes to mono float32, and serves
// fixed-size blocks non-blockingly.
type BluetoothSource struct {
	deviceAddr string

	mu     sync.Mutex
	ring   []byte // raw bytes awaiting consumption, FIFO
	cmd    *exec.Cmd
	stdout io.ReadCloser

	running atomic.Bool
	wg      sync.WaitGroup

	ptMu sync.Mutex
	pt   PassthroughWriter
}

// NewBluetoothSource builds a Bluetooth source for the given device
// address. An empty address means the caller wants discovery (see
// DiscoverConnectedDevice) to resolve one before Start.
func NewBluetoothSource(deviceAddr string) *BluetoothSource {
	return &BluetoothSource{deviceAddr: deviceAddr}
}

func (b *BluetoothSource) Start() error {
	if b.running.Load() {
		return nil
	}
	if b.deviceAddr == "" {
		return fmt.Errorf("audio: bluetooth start: no device address configured")
	}

	cmd := captureCommand(b.deviceAddr)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("audio: bluetooth stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audio: bluetooth capture start: %w", err)
	}

	b.mu.Lock()
	b.cmd = cmd
	b.stdout = stdout
	b.ring = b.ring[:0]
	b.mu.Unlock()

	b.running.Store(true)
	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.readLoop(stdout) }()

	log.Printf("[audio] bluetooth capture started device=%s", b.deviceAddr)
	return nil
}

// readLoop pulls from the child's stdout pipe into the ring buffer. The
// pipe read itself blocks, but it runs on its own goroutine so ReadBlock
// never does; excess bytes beyond the ~1s cap are dropped oldest-first.
func (b *BluetoothSource) readLoop(stdout io.ReadCloser) {
	r := bufio.NewReaderSize(stdout, 4096)
	chunk := make([]byte, 4096)
	for b.running.Load() {
		n, err := r.Read(chunk)
		if n > 0 {
			b.mu.Lock()
			b.ring = append(b.ring, chunk[:n]...)
			if over := len(b.ring) - btRingCap; over > 0 {
				b.ring = b.ring[over:]
			}
			b.mu.Unlock()
		}
		if err != nil {
			if b.running.Load() {
				log.Printf("[audio] bluetooth capture read: %v", err)
			}
			return
		}
	}
}

func (b *BluetoothSource) ReadBlock() []float32 {
	needed := BlockSize * btBytesPerFrame

	b.mu.Lock()
	if len(b.ring) < needed {
		b.mu.Unlock()
		return make([]float32, BlockSize)
	}
	raw := b.ring[:needed]
	b.ring = b.ring[needed:]
	b.mu.Unlock()

	block := make([]float32, BlockSize)
	for i := 0; i < BlockSize; i++ {
		off := i * btBytesPerFrame
		left := int16(uint16(raw[off]) | uint16(raw[off+1])<<8)
		right := int16(uint16(raw[off+2]) | uint16(raw[off+3])<<8)
		block[i] = (float32(left)/32768.0 + float32(right)/32768.0) / 2.0
	}

	b.ptMu.Lock()
	pt := b.pt
	b.ptMu.Unlock()
	if pt != nil {
		cp := make([]float32, len(block))
		copy(cp, block)
		pt.Write(cp)
	}

	return block
}

// Stop sends SIGTERM to the capture process and waits up to killGrace for
// it to exit before abandoning it.
func (b *BluetoothSource) Stop() {
	if !b.running.CompareAndSwap(true, false) {
		return
	}

	b.mu.Lock()
	cmd := b.cmd
	b.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)

		done := make(chan struct{})
		go func() { cmd.Wait(); close(done) }()

		select {
		case <-done:
		case <-time.After(killGrace):
			log.Printf("[audio] bluetooth capture did not exit within %s, abandoning", killGrace)
		}
	}

	b.wg.Wait()

	b.mu.Lock()
	b.ring = nil
	b.cmd = nil
	b.stdout = nil
	b.mu.Unlock()

	log.Println("[audio] bluetooth capture stopped")
}

func (b *BluetoothSource) IsActive() bool {
	return b.running.Load()
}

func (b *BluetoothSource) Passthrough(w PassthroughWriter) {
	b.ptMu.Lock()
	b.pt = w
	b.ptMu.Unlock()
}

// DiscoverConnectedDevice looks up the first connected A2DP media player
// over D-Bus, for when no explicit device address is configured. It uses
// the same org.freedesktop.DBus.ObjectManager walk as the AVRCP metadata
// poller.
func DiscoverConnectedDevice() (string, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return "", fmt.Errorf("audio: discover: dbus connect: %w", err)
	}
	defer conn.Close()

	obj := conn.Object("org.bluez", dbus.ObjectPath("/"))
	call := obj.Call("org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0)
	if call.Err != nil {
		return "", fmt.Errorf("audio: discover: get managed objects: %w", call.Err)
	}

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := call.Store(&objects); err != nil {
		return "", fmt.Errorf("audio: discover: decode managed objects: %w", err)
	}

	for _, ifaces := range objects {
		dev, ok := ifaces["org.bluez.Device1"]
		if !ok {
			continue
		}
		connected, _ := dev["Connected"].Value().(bool)
		if !connected {
			continue
		}
		if _, hasA2DP := ifaces["org.bluez.MediaControl1"]; !hasA2DP {
			if _, hasPlayer := ifaces["org.bluez.MediaPlayer1"]; !hasPlayer {
				continue
			}
		}
		addr, _ := dev["Address"].Value().(string)
		if addr != "" {
			return addr, nil
		}
	}
	return "", fmt.Errorf("audio: discover: no connected A2DP device")
}
