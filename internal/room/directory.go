// internal/room/directory.go
package room

import (
	"sort"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/protocol"
)

// PlayerRecord is one roster entry.
type PlayerRecord struct {
	ID      engine.PlayerID
	Name    string
	IsReady bool
}

// Directory tracks which room this session is in, who is in it, and which
// of those players is the local one.
//
// The roster is replaced wholesale by every PlayerJoined snapshot. The
// local player id is resolved once, by name, and never changes after.
type Directory struct {
	mu     sync.RWMutex
	myName string
	roomID engine.RoomID
	self   engine.PlayerID
	roster map[engine.PlayerID]string
	ready  map[engine.PlayerID]bool
}

// NewDirectory creates a directory for a session joining as myName.
func NewDirectory(myName string) *Directory {
	return &Directory{
		myName: myName,
		roster: make(map[engine.PlayerID]string),
		ready:  make(map[engine.PlayerID]bool),
	}
}

// HandlePlayerJoined applies a roster snapshot.
func (d *Directory) HandlePlayerJoined(m protocol.PlayerJoined) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.roomID == "":
		d.roomID = m.RoomID
		log.Infof("Room %s: joined as %q", m.RoomID, d.myName)
	case m.RoomID != "" && m.RoomID != d.roomID:
		log.Warnf("Room %s: ignoring room change to %s", d.roomID, m.RoomID)
	}

	if m.PlayerName == d.myName {
		switch {
		case d.self == engine.NoPlayer:
			d.self = m.PlayerID
			log.Infof("Room %s: local player resolved to %s", d.roomID, d.self)
		case m.PlayerID != d.self:
			log.Warnf("Room %s: player %s shares the local name %q; keeping %s as self",
				d.roomID, m.PlayerID, d.myName, d.self)
		}
	}

	roster := make(map[engine.PlayerID]string, len(m.PlayerList))
	for id, name := range m.PlayerList {
		roster[id] = name
	}
	if _, ok := roster[m.PlayerID]; !ok && m.PlayerID != engine.NoPlayer {
		log.Debugf("Room %s: snapshot does not list joiner %s", d.roomID, m.PlayerID)
	}
	d.roster = roster
	for id := range d.ready {
		if _, ok := roster[id]; !ok {
			delete(d.ready, id)
		}
	}
}

// HandlePlayerLeft removes a player. Unknown ids are a no-op.
func (d *Directory) HandlePlayerLeft(m protocol.PlayerLeft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.roster[m.PlayerID]; !ok {
		log.Debugf("Room %s: PlayerLeft for unknown player %s", d.roomID, m.PlayerID)
		return
	}
	delete(d.roster, m.PlayerID)
	delete(d.ready, m.PlayerID)
}

// HandlePlayerIsReady marks a player ready in the waiting room.
func (d *Directory) HandlePlayerIsReady(m protocol.PlayerIsReady) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.roster[m.PlayerID]; !ok {
		log.Debugf("Room %s: PlayerIsReady for unknown player %s", d.roomID, m.PlayerID)
		return
	}
	d.ready[m.PlayerID] = true
}

// RoomID returns the joined room, or "" before the first PlayerJoined.
func (d *Directory) RoomID() engine.RoomID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.roomID
}

// Self returns the local player's id once it has been resolved.
func (d *Directory) Self() (engine.PlayerID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.self, d.self != engine.NoPlayer
}

// MyName returns the name this session joined with.
func (d *Directory) MyName() string { return d.myName }

// Name returns a player's display name, or the id itself when unknown.
func (d *Directory) Name(id engine.PlayerID) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.roster[id]; ok {
		return name
	}
	return string(id)
}

// Has reports whether id is in the roster.
func (d *Directory) Has(id engine.PlayerID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.roster[id]
	return ok
}

// Roster returns a copy of the id → name map.
func (d *Directory) Roster() map[engine.PlayerID]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[engine.PlayerID]string, len(d.roster))
	for id, name := range d.roster {
		out[id] = name
	}
	return out
}

// IDs returns the roster ids in display order.
func (d *Directory) IDs() []engine.PlayerID {
	players := d.Players()
	ids := make([]engine.PlayerID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

// Players returns the roster as records sorted by id (numerically when
// ids are numbers).
func (d *Directory) Players() []PlayerRecord {
	d.mu.RLock()
	out := make([]PlayerRecord, 0, len(d.roster))
	for id, name := range d.roster {
		out = append(out, PlayerRecord{ID: id, Name: name, IsReady: d.ready[id]})
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out
}

func lessID(a, b engine.PlayerID) bool {
	na, errA := strconv.ParseUint(string(a), 10, 64)
	nb, errB := strconv.ParseUint(string(b), 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
