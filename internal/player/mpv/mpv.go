// Package mpv plays videos through an mpv process controlled over its JSON
// IPC socket.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/ytid"
)

const (
	commandTimeout = 2 * time.Second
	socketWait     = 3 * time.Second
)

// ErrNotRunning is returned when the mpv process is gone.
var ErrNotRunning = errors.New("mpv is not running")

// Options configures the mpv backend.
type Options struct {
	// Path is the mpv binary. Defaults to "mpv" on PATH.
	Path string
	// Socket is the IPC socket path. Defaults to a per-process temp path.
	Socket string
	// Video enables the video window; otherwise audio only.
	Video  bool
	Logger *slog.Logger
}

type mpvCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id,omitempty"`
}

type mpvResponse struct {
	Data      any    `json:"data"`
	RequestID int64  `json:"request_id"`
	Error     string `json:"error"`
}

type mpvEvent struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// Player controls one idle mpv process.
type Player struct {
	opts   Options
	logger *slog.Logger

	// startMu serializes launches so the socket wait runs without mu.
	startMu   sync.Mutex
	mu        sync.Mutex
	cmd       *exec.Cmd
	eventConn net.Conn

	state  atomic.Int32
	nextID atomic.Int64
	ended  chan struct{}
}

// New creates a player. mpv is started lazily on the first Load.
func New(opts Options) *Player {
	if opts.Path == "" {
		opts.Path = "mpv"
	}
	if opts.Socket == "" {
		opts.Socket = filepath.Join(os.TempDir(), fmt.Sprintf("tubeq-mpv-%d.sock", os.Getpid()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Player{
		opts:   opts,
		logger: logger,
		ended:  make(chan struct{}, 1),
	}
}

// start launches mpv in idle mode and subscribes to its events. It does
// nothing while mpv is running.
func (p *Player) start(ctx context.Context) error {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.running() {
		return nil
	}
	os.Remove(p.opts.Socket)

	args := []string{
		"--idle",
		"--really-quiet",
		"--no-terminal",
		"--keep-open=no",
		"--input-ipc-server=" + p.opts.Socket,
	}
	if !p.opts.Video {
		args = append(args, "--no-video", "--force-window=no")
	}
	cmd := exec.Command(p.opts.Path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}

	deadline := time.Now().Add(socketWait)
	for {
		if _, err := os.Stat(p.opts.Socket); err == nil {
			break
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			cmd.Process.Kill()
			cmd.Wait()
			return fmt.Errorf("mpv socket %s not created", p.opts.Socket)
		}
		time.Sleep(50 * time.Millisecond)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.listenLocked(ctx); err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return err
	}
	p.cmd = cmd
	p.logger.Debug("mpv started", "socket", p.opts.Socket, "pid", cmd.Process.Pid)
	return nil
}

func (p *Player) running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil || p.eventConn != nil
}

// listenLocked opens the event connection and watches for end-file.
func (p *Player) listenLocked(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", p.opts.Socket)
	if err != nil {
		return fmt.Errorf("failed to connect for events: %w", err)
	}
	data, _ := json.Marshal(mpvCommand{Command: []any{"enable_event", "end-file"}})
	if _, err := conn.Write(append(data, '\n')); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable events: %w", err)
	}
	p.eventConn = conn
	go p.handleEvents(conn)
	return nil
}

func (p *Player) handleEvents(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev mpvEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil || ev.Event == "" {
			continue
		}
		p.logger.Debug("mpv event", "event", ev.Event, "reason", ev.Reason)
		if ev.Event != "end-file" || ev.Reason != "eof" {
			continue
		}

		p.setState(core.StateEnded)
		select {
		case p.ended <- struct{}{}:
		default:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.eventConn != conn {
		return
	}
	// mpv went away on its own. Forget it so the next Load starts a
	// fresh process.
	p.logger.Debug("mpv event stream closed", "err", scanner.Err())
	conn.Close()
	p.eventConn = nil
	if cmd := p.cmd; cmd != nil {
		p.cmd = nil
		go func() {
			cmd.Process.Kill()
			cmd.Wait()
		}()
	}
	p.setState(core.StateStopped)
}

// send issues one command on a fresh connection and waits for its reply.
func (p *Player) send(ctx context.Context, args ...any) (*mpvResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", p.opts.Socket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	id := p.nextID.Add(1)
	data, err := json.Marshal(mpvCommand{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("failed to write command: %w", err)
	}

	// Events may be interleaved with the reply.
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		var resp mpvResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.RequestID != id {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return &resp, fmt.Errorf("mpv %v: %s", args[0], resp.Error)
		}
		return &resp, nil
	}
}

func (p *Player) setState(s core.PlayerState) {
	p.state.Store(int32(s))
}

// Load starts playing videoID, launching mpv if needed.
func (p *Player) Load(ctx context.Context, videoID string) error {
	if err := p.start(ctx); err != nil {
		return err
	}

	if _, err := p.send(ctx, "loadfile", ytid.WatchURL(videoID), "replace"); err != nil {
		return err
	}
	if _, err := p.send(ctx, "set_property", "pause", false); err != nil {
		return err
	}
	p.setState(core.StatePlaying)
	return nil
}

func (p *Player) Play(ctx context.Context) error {
	if _, err := p.send(ctx, "set_property", "pause", false); err != nil {
		return err
	}
	p.setState(core.StatePlaying)
	return nil
}

func (p *Player) Pause(ctx context.Context) error {
	if _, err := p.send(ctx, "set_property", "pause", true); err != nil {
		return err
	}
	p.setState(core.StatePaused)
	return nil
}

func (p *Player) Stop(ctx context.Context) error {
	if _, err := p.send(ctx, "stop"); err != nil {
		return err
	}
	p.setState(core.StateStopped)
	return nil
}

// Seek jumps to an absolute position.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	_, err := p.send(ctx, "seek", max(position, 0).Seconds(), "absolute")
	return err
}

// Position returns the playback position; zero when nothing is loaded.
func (p *Player) Position(ctx context.Context) (time.Duration, error) {
	resp, err := p.send(ctx, "get_property", "time-pos")
	if err != nil {
		return 0, err
	}
	secs, ok := resp.Data.(float64)
	if !ok {
		return 0, nil
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// State returns the last known state without touching the socket.
func (p *Player) State(context.Context) (core.PlayerState, error) {
	return core.PlayerState(p.state.Load()), nil
}

func (p *Player) Ended() <-chan struct{} {
	return p.ended
}

// Close quits mpv and removes the socket.
func (p *Player) Close() error {
	p.mu.Lock()
	launched := p.cmd != nil
	p.mu.Unlock()
	if launched {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		_, _ = p.send(ctx, "quit")
		cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.eventConn != nil {
		p.eventConn.Close()
		p.eventConn = nil
	}
	if cmd := p.cmd; cmd != nil {
		p.cmd = nil
		done := make(chan struct{})
		go func() {
			cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(commandTimeout):
			cmd.Process.Kill()
			<-done
		}
	}
	if launched {
		os.Remove(p.opts.Socket)
	}
	p.setState(core.StateStopped)
	return nil
}

var _ core.Player = (*Player)(nil)
