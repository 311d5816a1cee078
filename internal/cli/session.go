package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/tessro/tubeq/internal/controller"
	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/events"
	"github.com/tessro/tubeq/internal/logging"
	"github.com/tessro/tubeq/internal/player"
	"github.com/tessro/tubeq/internal/player/mpv"
	"github.com/tessro/tubeq/internal/playlistfile"
	"github.com/tessro/tubeq/internal/retry"
	"github.com/tessro/tubeq/internal/shorts"
	"github.com/tessro/tubeq/internal/youtube"
)

// eventLogSize bounds the in-memory event log.
const eventLogSize = 200

// session is a controller wired from config, with its playlist file
// loaded.
type session struct {
	ctrl   *controller.Controller
	player core.Player
	events *events.Log
	logger *slog.Logger
	file   string

	closers []io.Closer
}

type sessionOptions struct {
	// realPlayer selects the configured backend; otherwise playback is a
	// no-op, which is what the file-editing commands want.
	realPlayer bool
	// echo receives one formatted line per event.
	echo io.Writer
}

func playlistPath() string {
	if playlistFile != "" {
		return playlistFile
	}
	if cfg.Queue.File != "" {
		return cfg.Queue.File
	}
	return playlistfile.DefaultPath()
}

func newLogger() (*slog.Logger, io.Closer, error) {
	if Verbose() && cfg.Log.File == "" {
		return logging.NewWriter(os.Stderr, "debug"), io.NopCloser(nil), nil
	}
	return logging.New(cfg.Log.Level, cfg.Log.File)
}

func newLookup(logger *slog.Logger) *youtube.Client {
	policy := retry.DefaultConfig()
	policy.MaxRetries = cfg.Lookup.MaxRetries

	detector := shorts.New()
	detector.Disabled = cfg.Lookup.IncludeShorts

	return youtube.New(
		youtube.WithTimeout(time.Duration(cfg.Lookup.Timeout)*time.Second),
		youtube.WithOEmbedURL(cfg.Lookup.OEmbedURL),
		youtube.WithProxyURL(cfg.Lookup.ProxyURL),
		youtube.WithRetry(policy),
		youtube.WithDetector(detector),
		youtube.WithConcurrency(cfg.Lookup.Concurrency),
		youtube.WithPublishedAt(cfg.Lookup.PublishedAt),
		youtube.WithLogger(logger),
	)
}

func newPlayer(logger *slog.Logger, real bool) core.Player {
	if !real || cfg.Player.Backend == "none" {
		return player.NewNop()
	}
	return mpv.New(mpv.Options{
		Path:   cfg.Player.MPVPath,
		Socket: cfg.Player.Socket,
		Video:  cfg.Player.Video,
		Logger: logger,
	})
}

// openSession builds a controller from the loaded config and restores the
// playlist file into it. A missing file is an empty queue.
func openSession(opts sessionOptions) (*session, error) {
	logger, logCloser, err := newLogger()
	if err != nil {
		return nil, err
	}

	s := &session{
		events:  events.NewLog(eventLogSize),
		logger:  logger,
		file:    playlistPath(),
		closers: []io.Closer{logCloser},
	}
	s.player = newPlayer(logger, opts.realPlayer)
	s.closers = append(s.closers, s.player)

	sink := s.events.Sink()
	if opts.echo != nil {
		f := events.NewFormatter(events.WithEmoji(true), events.WithTimestamp(true))
		sink = events.Fanout(sink, func(e events.Event) {
			fmt.Fprintln(opts.echo, f.Format(e))
		})
	}

	s.ctrl = controller.New(s.player, newLookup(logger), controller.Options{
		Capacity: cfg.Queue.Capacity,
		SeekStep: time.Duration(cfg.Player.SeekStep) * time.Second,
		Mode:     core.Mode{Loop: cfg.Queue.Loop, Shuffle: cfg.Queue.Shuffle},
		Sink:     sink,
		Logger:   logger,
		// Without a real player there is nothing to play, and autoplay
		// would count plays that never happened.
		DisableAutoplay: !opts.realPlayer,
		Rand:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	})

	items, err := playlistfile.Load(s.file)
	if errors.Is(err, os.ErrNotExist) {
		items, err = nil, nil
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load playlist %s: %w", s.file, err)
	}
	if len(items) > cfg.Queue.Capacity {
		logger.Warn("playlist exceeds capacity, truncating", "items", len(items), "capacity", cfg.Queue.Capacity)
	}
	s.ctrl.Load(items)
	logger.Debug("session opened", "file", s.file, "items", len(items))

	return s, nil
}

// save writes the queue back to the playlist file.
func (s *session) save() error {
	if err := playlistfile.Save(s.file, s.ctrl.Items()); err != nil {
		return fmt.Errorf("failed to save playlist %s: %w", s.file, err)
	}
	return nil
}

func (s *session) Close() error {
	var errs []error
	for _, c := range s.closers {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}
