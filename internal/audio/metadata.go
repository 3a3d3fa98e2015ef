package audio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

const (
	metadataPollInterval = 3 * time.Second
	metadataStartDelay   = 5 * time.Second
)

// MetadataPoller polls BlueZ's MediaPlayer1 interface for AVRCP metadata
// and forwards artist/title/album into SharedState.
type MetadataPoller struct {
	st *state.State

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMetadataPoller starts polling in the background. Call Stop to end it.
func NewMetadataPoller(st *state.State) *MetadataPoller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &MetadataPoller{st: st, cancel: cancel}
	p.wg.Add(1)
	go p.run(ctx)
	return p
}

func (p *MetadataPoller) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *MetadataPoller) run(ctx context.Context) {
	defer p.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(metadataStartDelay):
	}

	ticker := time.NewTicker(metadataPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			artist, title, album, ok := fetchTrackMetadata()
			if !ok {
				continue
			}
			p.st.Update(state.Patch{
				"artist": artist,
				"title":  title,
				"album":  album,
			})
		}
	}
}

// fetchTrackMetadata queries BlueZ's first connected MediaPlayer1 object
// for its Track property. ok is false when no player is connected or the
// query fails; the caller simply tries again on the next tick.
func fetchTrackMetadata() (artist, title, album string, ok bool) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		log.Printf("[audio] metadata: dbus connect: %v", err)
		return "", "", "", false
	}
	defer conn.Close()

	obj := conn.Object("org.bluez", dbus.ObjectPath("/"))
	call := obj.Call("org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0)
	if call.Err != nil {
		return "", "", "", false
	}

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := call.Store(&objects); err != nil {
		return "", "", "", false
	}

	var playerPath dbus.ObjectPath
	for path, ifaces := range objects {
		if _, has := ifaces["org.bluez.MediaPlayer1"]; has {
			playerPath = path
			break
		}
	}
	if playerPath == "" {
		return "", "", "", false
	}

	playerObj := conn.Object("org.bluez", playerPath)
	trackVariant, err := playerObj.GetProperty("org.bluez.MediaPlayer1.Track")
	if err != nil {
		return "", "", "", false
	}

	trackMap, ok := trackVariant.Value().(map[string]dbus.Variant)
	if !ok {
		return "", "", "", false
	}
	title, _ = trackMap["Title"].Value().(string)
	artist, _ = trackMap["Artist"].Value().(string)
	album, _ = trackMap["Album"].Value().(string)
	return artist, title, album, true
}
