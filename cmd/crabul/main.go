// Command crabul is a terminal client for Crabul rooms.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/crabul/internal/config"
	"github.com/jason-s-yu/crabul/internal/game"
	"github.com/jason-s-yu/crabul/internal/session"
	"github.com/jason-s-yu/crabul/internal/transport"
)

var errQuit = errors.New("quit")

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	name := flag.String("name", "", "player name (overrides config)")
	roomCode := flag.String("room", "", "room code to join; empty creates a room")
	host := flag.String("host", "", "server host[:port] (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *name != "" {
		cfg.PlayerName = *name
	}
	if *roomCode != "" {
		cfg.RoomCode = *roomCode
	}
	if *host != "" {
		cfg.Host = *host
	}
	if cfg.PlayerName == "" {
		cfg.PlayerName, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your player name").Show()
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		log.Fatalf("Error: %v", err)
	}
}

func setupLogging(cfg config.Config) {
	log.SetLevel(cfg.Level())
	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	if cfg.Level() >= log.DebugLevel {
		pterm.EnableDebugMessages()
	}
}

// run drives one session: the event loop, terminal rendering and stdin
// input run together until the channel closes or the user quits.
func run(ctx context.Context, cfg config.Config, stdin io.Reader) error {
	s := session.New(session.Options{
		Transport: transport.Options{
			Host:        cfg.Host,
			Secure:      cfg.Secure,
			DialTimeout: cfg.DialTimeout,
		},
		PlayerName:     cfg.PlayerName,
		RoomCode:       cfg.RoomCode,
		StartCountdown: cfg.StartCountdown,
	})
	defer s.Close()

	phases := make(chan game.Phase, 4)
	s.OnPhase = func(p game.Phase) {
		select {
		case phases <- p:
		default:
		}
	}
	s.OnCountdown = func(n int) { pterm.Warning.Printfln("Game starting in %d...", n) }

	pterm.DefaultHeader.WithFullWidth().Println("Crabul")
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Connecting to %s as %s...", cfg.Host, s.Directory.MyName()))
	if err := s.Start(ctx); err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success("Connected")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.Run(ctx)
		if err == nil {
			pterm.Warning.Println("Disconnected from server.")
			return errQuit
		}
		return err
	})
	g.Go(func() error { return renderLoop(ctx, s, phases) })
	g.Go(func() error { return inputLoop(ctx, s, stdin) })

	err := g.Wait()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func renderLoop(ctx context.Context, s *session.Session, phases <-chan game.Phase) error {
	dropped := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.Notifications.Ready():
			printNotifications(s.Notifications.Drain())
			if n := s.Notifications.Dropped(); n > dropped {
				pterm.Warning.Printfln("%d notifications were dropped.", n-dropped)
				dropped = n
			}
		case p := <-phases:
			self, _ := s.Directory.Self()
			switch p {
			case game.PhasePlay:
				pterm.Success.Println("Game started.")
				printView(s.View(), s.Players(), self)
			case game.PhaseResults:
				printResults(s.View(), s.Directory)
			}
		}
	}
}

func inputLoop(ctx context.Context, s *session.Session, stdin io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			if err := handleLine(s, line); err != nil {
				return err
			}
		}
	}
}

func handleLine(s *session.Session, line string) error {
	self, _ := s.Directory.Self()
	in, err := parseInput(line, self)
	switch {
	case errors.Is(err, errEmptyInput):
		return nil
	case err != nil:
		pterm.Error.Println(err)
		return nil
	}

	switch in.kind {
	case inputGesture:
		err = s.Gesture(in.gesture)
	case inputStart:
		err = s.StartGame()
	case inputRaw:
		err = s.SendRaw(in.raw)
		if err != nil && !errors.Is(err, session.ErrClosed) {
			pterm.Error.Println(err)
			return nil
		}
	case inputShow:
		printRoster(s.Directory.RoomID(), s.Players(), self)
		printView(s.View(), s.Players(), self)
	case inputHelp:
		pterm.Println(usage)
	case inputQuit:
		return errQuit
	}
	if errors.Is(err, session.ErrClosed) {
		return errQuit
	}
	return err
}
