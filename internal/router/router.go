// internal/router/router.go
package router

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/internal/protocol"
)

// RoomHandler owns the room-domain messages.
type RoomHandler interface {
	HandlePlayerJoined(m protocol.PlayerJoined)
	HandlePlayerLeft(m protocol.PlayerLeft)
	HandlePlayerIsReady(m protocol.PlayerIsReady)
}

// GameHandler owns the game-domain messages and server rejections.
type GameHandler interface {
	Apply(m protocol.Message) error
	Reject(m protocol.CommandRejected)
}

// Router dispatches decoded messages to the component that owns them.
type Router struct {
	room RoomHandler
	game GameHandler
}

// New creates a router over the given handlers.
func New(room RoomHandler, game GameHandler) *Router {
	return &Router{room: room, game: game}
}

// RouteFrame decodes and routes one raw frame. Undecodable frames are
// logged and dropped; they never change state.
func (r *Router) RouteFrame(frame []byte) {
	msg, err := protocol.Decode(frame)
	switch {
	case errors.Is(err, protocol.ErrUnknownTag):
		log.WithField("tag", msg.Tag()).Warn("Router: unknown message tag, ignoring")
		return
	case err != nil:
		log.WithError(err).Warnf("Router: dropping frame %.80q", frame)
		return
	}
	log.WithFields(log.Fields{"tag": msg.Tag(), "domain": protocol.DomainOf(msg)}).Debug("Router: frame received")
	r.Route(msg)
}

// Route dispatches one message.
func (r *Router) Route(msg protocol.Message) {
	switch m := msg.(type) {
	// Room domain
	case protocol.PlayerJoined:
		r.room.HandlePlayerJoined(m)
	case protocol.PlayerLeft:
		r.room.HandlePlayerLeft(m)
	case protocol.PlayerIsReady:
		r.room.HandlePlayerIsReady(m)

	// Game domain
	case protocol.GameStarted,
		protocol.PeekingPhaseStarted,
		protocol.PlayerTurn,
		protocol.CardWasDrawn,
		protocol.DrawnCard,
		protocol.CardSwapped,
		protocol.CardDiscarded,
		protocol.PowerActivated,
		protocol.PowerUsed,
		protocol.PeekedCard,
		protocol.SameCardAttempt,
		protocol.CardReplaced,
		protocol.PlayerWentCrabul,
		protocol.GameTerminated,
		protocol.TurnEndedByTimeout,
		protocol.PowerDiscarded,
		protocol.ForcedBlindSwap:
		if err := r.game.Apply(m); err != nil {
			log.WithError(err).WithField("tag", m.Tag()).Warn("Router: game rejected message")
		}

	// Control
	case protocol.CommandRejected:
		r.game.Reject(m)

	case protocol.UnknownMessage:
		log.WithField("tag", m.Name).Warn("Router: unknown message tag, ignoring")
	default:
		log.Warnf("Router: no route for %T", msg)
	}
}
