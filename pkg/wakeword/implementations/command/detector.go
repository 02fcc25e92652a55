// Package command runs a wake-word engine as a child process. The process
// receives little-endian 16-bit mono PCM on stdin and reports JSON lines on
// stdout:
//
//	{"event":"ready"}
//	{"event":"wake","keyword":"hey ditto","index":0}
//	{"event":"error","reason":"activation_limit","message":"..."}
package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
	"github.com/xaionaro-go/xsync"
)

const signalName = "wake_word"

type Detector struct {
	Cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser

	Locker       xsync.Mutex
	PendingWakes []wakeword.Event
	LastError    error
	ExitError    error
	IsExitLogged bool
	Exited       chan struct{}

	config config
}

var (
	_ wakeword.Signal   = (*Detector)(nil)
	_ wakeword.Resetter = (*Detector)(nil)
)

// Args converts the configuration into the detector's command line flags.
func Args(cfg wakeword.Config) []string {
	args := []string{
		"--sensitivity", strconv.FormatFloat(cfg.Sensitivity, 'f', -1, 64),
	}
	for _, kw := range cfg.Keywords {
		args = append(args, "--keyword", kw)
	}
	if cfg.ModelPath != "" {
		args = append(args, "--model", cfg.ModelPath)
	}
	if cfg.ContextPath != "" {
		args = append(args, "--context", cfg.ContextPath)
	}
	if cfg.RequireEndpoint {
		args = append(args, "--require-endpoint")
	}
	return args
}

// New starts the detector and waits until it reports readiness. An
// activation key rejection is returned as activation.ErrActivationKey.
func New(
	ctx context.Context,
	command []string,
	cfg wakeword.Config,
	opts ...Option,
) (_ *Detector, _err error) {
	logger.Tracef(ctx, "New(ctx, %v, %#+v)", command, cfg)
	defer func() { logger.Tracef(ctx, "/New(ctx, %v, %#+v): %v", command, cfg, _err) }()

	if len(command) == 0 {
		return nil, fmt.Errorf("the detector command is not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := Options(opts).config()

	args := append(append([]string{}, command[1:]...), Args(cfg)...)
	cmd := exec.Command(command[0], args...)
	cmd.Stderr = os.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to get the stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("unable to get the stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("unable to start '%s': %w", command[0], err)
	}

	d := &Detector{
		Cmd:    cmd,
		Stdin:  stdin,
		Stdout: stdout,
		Exited: make(chan struct{}),
		config: c,
	}
	ready := make(chan *Message, 1)
	observability.Go(ctx, func() {
		d.readLoop(ctx, ready)
	})

	t := time.NewTimer(c.ReadyTimeout)
	defer t.Stop()
	select {
	case msg := <-ready:
		return d.onStartMessage(ctx, msg)
	case <-d.Exited:
		select {
		case msg := <-ready:
			return d.onStartMessage(ctx, msg)
		default:
		}
		err := d.exitError()
		d.Close()
		return nil, fmt.Errorf("the detector exited before becoming ready: %w", err)
	case <-t.C:
		d.Close()
		return nil, fmt.Errorf("the detector did not become ready within %v", c.ReadyTimeout)
	case <-ctx.Done():
		d.Close()
		return nil, ctx.Err()
	}
}

func (d *Detector) onStartMessage(
	ctx context.Context,
	msg *Message,
) (*Detector, error) {
	if msg.Event == EventTypeReady {
		logger.Debugf(ctx, "the wake-word detector is ready")
		return d, nil
	}
	d.Close()
	if IsActivationKeyReason(msg.Reason) {
		return nil, activation.ErrActivationKey{Reason: msg.Reason, Err: fmt.Errorf("%s", msg.Message)}
	}
	return nil, fmt.Errorf("the detector failed to start: %s: %s", msg.Reason, msg.Message)
}

func (d *Detector) readLoop(
	ctx context.Context,
	ready chan<- *Message,
) {
	defer close(d.Exited)
	defer func() {
		err := d.Cmd.Wait()
		if err == nil {
			err = io.EOF
		}
		d.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
			d.ExitError = err
		})
	}()

	isReady := false
	scanner := bufio.NewScanner(d.Stdout)
	for scanner.Scan() {
		msg, err := ParseMessage(scanner.Bytes())
		if err != nil {
			logger.Warnf(ctx, "unexpected output of the wake-word detector: %v", err)
			continue
		}
		if !isReady {
			switch msg.Event {
			case EventTypeReady, EventTypeError:
				isReady = msg.Event == EventTypeReady
				ready <- msg
				if !isReady {
					return
				}
				continue
			}
		}
		switch msg.Event {
		case EventTypeWake:
			logger.Debugf(ctx, "wake word '%s' detected", msg.Keyword)
			d.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
				d.PendingWakes = append(d.PendingWakes, wakeword.Event{Keyword: msg.Keyword, Score: msg.Score})
			})
		case EventTypeError:
			err := fmt.Errorf("%s: %s", msg.Reason, msg.Message)
			logger.Errorf(ctx, "the wake-word detector reported an error: %v", err)
			d.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
				d.LastError = err
			})
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debugf(ctx, "unable to read the detector output: %v", err)
	}
}

func (d *Detector) exitError() error {
	return xsync.DoR1(xsync.WithNoLogging(context.Background(), true), &d.Locker, func() error {
		return d.ExitError
	})
}

func (d *Detector) isExited() bool {
	select {
	case <-d.Exited:
		return true
	default:
		return false
	}
}

// exitedError reports the exit of the detector, logging it only the first
// time.
func (d *Detector) exitedError(ctx context.Context) error {
	err := xsync.DoR1(xsync.WithNoLogging(ctx, true), &d.Locker, func() error {
		if !d.IsExitLogged {
			d.IsExitLogged = true
			logger.Errorf(ctx, "the wake-word detector exited: %v", d.ExitError)
		}
		return d.ExitError
	})
	return activation.ErrTransientSignal{Source: signalName, Err: ErrExited{Err: err}}
}

// ProcessFrame sends the frame to the detector and returns a wake event
// reported since the previous call, if any. Once the detector has exited the
// frames are dropped and every call returns ErrExited (wrapped into
// activation.ErrTransientSignal).
func (d *Detector) ProcessFrame(
	ctx context.Context,
	frame pcm.Frame,
) (*wakeword.Event, error) {
	isExited := d.isExited()
	if !isExited {
		if _, err := d.Stdin.Write(frame.Bytes()); err != nil {
			if d.isExited() {
				return nil, d.exitedError(ctx)
			}
			return nil, activation.ErrTransientSignal{Source: signalName, Err: fmt.Errorf("unable to write a frame: %w", err)}
		}
	}

	var (
		ev  *wakeword.Event
		err error
	)
	d.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
		if d.LastError != nil {
			err, d.LastError = d.LastError, nil
		}
		if len(d.PendingWakes) > 0 {
			wake := d.PendingWakes[0]
			d.PendingWakes = d.PendingWakes[1:]
			ev = &wake
		}
	})
	if ev != nil {
		return ev, nil
	}
	if err != nil {
		return nil, activation.ErrTransientSignal{Source: signalName, Err: err}
	}
	if isExited {
		return nil, d.exitedError(ctx)
	}
	return nil, nil
}

// Reset drops the detections that were not consumed yet.
func (d *Detector) Reset(ctx context.Context) {
	d.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
		d.PendingWakes = nil
		d.LastError = nil
	})
}

func (d *Detector) Close() error {
	var result *multierror.Error
	if err := d.Stdin.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the detector's stdin: %w", err))
	}
	t := time.NewTimer(d.config.StopTimeout)
	defer t.Stop()
	select {
	case <-d.Exited:
	case <-t.C:
		if err := d.Cmd.Process.Kill(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to kill the detector: %w", err))
		}
		<-d.Exited
	}
	return result.ErrorOrNil()
}
