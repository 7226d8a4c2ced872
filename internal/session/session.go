// internal/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
	"github.com/jason-s-yu/crabul/internal/countdown"
	"github.com/jason-s-yu/crabul/internal/game"
	"github.com/jason-s-yu/crabul/internal/room"
	"github.com/jason-s-yu/crabul/internal/router"
	"github.com/jason-s-yu/crabul/internal/transport"
)

var (
	// ErrNotStarted is returned by Run before Start has connected.
	ErrNotStarted = errors.New("session not started")
	// ErrClosed is returned when posting work to a closed session.
	ErrClosed = errors.New("session closed")
)

// DefaultStartCountdown is the waiting-room countdown length in seconds.
const DefaultStartCountdown = 3

// Options configure a Session.
type Options struct {
	Transport      transport.Options
	PlayerName     string
	RoomCode       string          // empty creates a new room
	StartCountdown int             // seconds; DefaultStartCountdown when <= 0
	QueueSize      int             // notification queue bound
	Clock          clockwork.Clock // real clock when nil
}

// Session is one connection to a room and everything that lives for its
// duration. Inbound frames, local gestures and countdown callbacks are all
// serialized through Run.
type Session struct {
	ID uuid.UUID

	Directory     *room.Directory
	Game          *game.Game
	Router        *router.Router
	Channel       *transport.Channel
	Countdown     *countdown.Countdown
	Notifications *game.NotificationQueue

	// Presentation callbacks, invoked from the Run goroutine.
	OnPhase     func(p game.Phase)
	OnCountdown func(remaining int)

	opts         Options
	countdownGen uint64 // owned by the Run goroutine
	events       chan func(ctx context.Context)
	done         chan struct{}
	closeOnce    sync.Once
}

// New wires a session. Nothing is connected until Start.
func New(opts Options) *Session {
	if opts.StartCountdown <= 0 {
		opts.StartCountdown = DefaultStartCountdown
	}
	id := uuid.New()
	dir := room.NewDirectory(opts.PlayerName)
	g := game.NewGame(id, dir)
	s := &Session{
		ID:            id,
		Directory:     dir,
		Game:          g,
		Router:        router.New(dir, g),
		Channel:       transport.New(opts.Transport),
		Countdown:     countdown.New(opts.Clock),
		Notifications: game.NewNotificationQueue(opts.QueueSize),
		opts:          opts,
		events:        make(chan func(context.Context), 32),
		done:          make(chan struct{}),
	}
	g.Notifier = s.Notifications
	g.NavigateFn = s.navigate
	return s
}

func (s *Session) logger() *log.Entry {
	return log.WithField("session", s.ID)
}

// Start connects to the room given in Options.
func (s *Session) Start(ctx context.Context) error {
	endpoint := transport.Endpoint(s.opts.RoomCode)
	if err := s.Channel.Connect(ctx, endpoint, s.opts.PlayerName); err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.logger().Infof("Session %s: joined %s as %q.", s.ID, endpoint, s.opts.PlayerName)
	return nil
}

// Run is the session's event loop. It returns nil when the channel closes,
// ctx.Err() when ctx is cancelled, and ErrNotStarted before Start.
func (s *Session) Run(ctx context.Context) error {
	frames := s.Channel.Frames()
	if frames == nil {
		return ErrNotStarted
	}
	defer s.Countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case frame, ok := <-frames:
			if !ok {
				s.logger().Infof("Session %s: channel closed, ending session.", s.ID)
				return nil
			}
			s.Router.RouteFrame(frame)
		case fn := <-s.events:
			fn(ctx)
		}
	}
}

// post queues fn for the event loop.
func (s *Session) post(fn func(ctx context.Context)) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- fn:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Gesture queues a local gesture. It is encoded against the mode current
// when the loop reaches it; gestures with no command in that mode are
// dropped.
func (s *Session) Gesture(g engine.Gesture) error {
	return s.post(func(ctx context.Context) { s.handleGesture(ctx, g) })
}

func (s *Session) handleGesture(ctx context.Context, g engine.Gesture) {
	if g.Kind == engine.GestureClickStart && s.Game.Started() {
		s.logger().Debugf("Session %s: game already started, not sending start.", s.ID)
		return
	}
	mode := s.Game.Mode()
	cmd, ok := engine.Encode(g, mode)
	if !ok {
		s.logger().Debugf("Session %s: %s has no command in mode %s.", s.ID, g.Kind, mode)
		return
	}
	s.send(ctx, cmd)
}

// SendRaw validates and queues a typed command.
func (s *Session) SendRaw(raw string) error {
	cmd, err := engine.ParseCommand(raw)
	if err != nil {
		return err
	}
	return s.post(func(ctx context.Context) { s.send(ctx, cmd) })
}

func (s *Session) send(ctx context.Context, cmd engine.Command) {
	err := s.Channel.Send(ctx, cmd)
	if err != nil && !errors.Is(err, transport.ErrNotOpen) {
		s.logger().WithError(err).Warnf("Session %s: send failed.", s.ID)
	}
}

// StartGame begins the waiting-room countdown. At zero a start request is
// sent if the game has not started meanwhile. Calling it again restarts the
// countdown.
func (s *Session) StartGame() error {
	return s.post(func(context.Context) {
		if s.Game.Started() {
			s.logger().Warnf("Session %s: game already started, ignoring start.", s.ID)
			return
		}
		s.countdownGen++
		gen := s.countdownGen
		// Callbacks run on the countdown goroutine.
		s.Countdown.Start(s.opts.StartCountdown,
			func(remaining int) {
				_ = s.post(func(context.Context) { s.tick(gen, remaining) })
			},
			func() {
				_ = s.post(func(ctx context.Context) {
					if gen != s.countdownGen {
						return
					}
					s.handleGesture(ctx, engine.ClickStart())
				})
			})
	})
}

func (s *Session) tick(gen uint64, remaining int) {
	if gen != s.countdownGen {
		return
	}
	if s.OnCountdown != nil {
		s.OnCountdown(remaining)
	}
}

// cancelCountdown stops the countdown and invalidates callbacks already
// queued. Runs on the loop.
func (s *Session) cancelCountdown() {
	s.countdownGen++
	s.Countdown.Stop()
}

func (s *Session) navigate(p game.Phase) {
	if p == game.PhasePlay {
		s.cancelCountdown()
	}
	s.logger().Infof("Session %s: navigating to %s.", s.ID, p)
	if s.OnPhase != nil {
		s.OnPhase(p)
	}
}

// View returns a snapshot of the game for rendering.
func (s *Session) View() game.View { return s.Game.View() }

// Players returns the roster in seat order.
func (s *Session) Players() []room.PlayerRecord { return s.Directory.Players() }

// Close stops the event loop, cancels the countdown and closes the socket.
// It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.Countdown.Stop()
		err = s.Channel.Close()
		s.logger().Infof("Session %s: closed.", s.ID)
	})
	return err
}
