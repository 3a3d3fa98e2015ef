package audio

import (
	"log"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

// Manager owns the mic and Bluetooth sources and implements the
// source-switching policy: on mode change the old
// source is stopped (its buffer discarded with it) and the new one
// started; a failed start falls back to mic.
type Manager struct {
	mic *MicSource
	bt  *BluetoothSource
	st  *state.State

	deviceAddr string
	current    Source
	mode       state.Mode
	metaPoller *MetadataPoller
}

// NewManager builds a Manager around a mic source (bound to micDeviceIdx,
// or the host default when negative) and a Bluetooth source bound to
// deviceAddr (which may be empty; Switch to bt then tries discovery). st
// receives AVRCP track metadata while a bt source is active.
func NewManager(micDeviceIdx int, deviceAddr string, st *state.State) *Manager {
	return &Manager{
		mic:        NewMicSource(micDeviceIdx),
		bt:         NewBluetoothSource(deviceAddr),
		st:         st,
		deviceAddr: deviceAddr,
		mode:       state.ModeMic,
	}
}

// Mode reports the source actually running, which may differ from the
// mode last requested if a bt start failed over to mic.
func (m *Manager) Mode() state.Mode { return m.mode }

// Start activates the mic source; it is the manager's initial source.
func (m *Manager) Start() error {
	if err := m.mic.Start(); err != nil {
		return err
	}
	m.current = m.mic
	m.mode = state.ModeMic
	return nil
}

// Switch transitions to the requested mode. It stops the currently
// running source (discarding its buffer), then starts the target. A
// failed bt start reverts to mic and reports the failure so the caller
// can surface it in the status line and SharedState.
func (m *Manager) Switch(target state.Mode) (actual state.Mode, failure error) {
	if target == m.mode {
		return m.mode, nil
	}

	if m.current != nil {
		m.current.Stop()
	}

	if target == state.ModeBT {
		if m.deviceAddr == "" {
			discovered, err := DiscoverConnectedDevice()
			if err != nil {
				log.Printf("[audio] bluetooth discovery failed: %v", err)
			} else {
				m.bt.deviceAddr = discovered
			}
		}

		if err := m.bt.Start(); err != nil {
			log.Printf("[audio] bluetooth start failed, falling back to mic: %v", err)
			if startErr := m.mic.Start(); startErr != nil {
				log.Printf("[audio] mic fallback also failed: %v", startErr)
			}
			m.current = m.mic
			m.mode = state.ModeMic
			return m.mode, err
		}

		m.current = m.bt
		m.mode = state.ModeBT
		m.metaPoller = NewMetadataPoller(m.st)
		return m.mode, nil
	}

	m.stopMetaPoller()

	if err := m.mic.Start(); err != nil {
		m.current = nil
		return m.mode, err
	}
	m.current = m.mic
	m.mode = state.ModeMic
	return m.mode, nil
}

func (m *Manager) stopMetaPoller() {
	if m.metaPoller != nil {
		m.metaPoller.Stop()
		m.metaPoller = nil
	}
}

// ReadBlock delegates to whichever source is currently active.
func (m *Manager) ReadBlock() []float32 {
	if m.current == nil {
		return make([]float32, BlockSize)
	}
	return m.current.ReadBlock()
}

// Passthrough forwards to both sources so it stays armed across a mode
// switch without the caller having to re-register it.
func (m *Manager) Passthrough(w PassthroughWriter) {
	m.mic.Passthrough(w)
	m.bt.Passthrough(w)
}

// Stop halts whichever source is currently active.
func (m *Manager) Stop() {
	m.stopMetaPoller()
	if m.current != nil {
		m.current.Stop()
	}
}
