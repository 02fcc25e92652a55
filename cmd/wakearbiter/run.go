package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/arbiter"
	"github.com/xaionaro-go/wakearbiter/pkg/config"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/implementations/sqlite"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/server"
	"golang.org/x/sync/errgroup"
)

func run(
	ctx context.Context,
	fs afero.Fs,
	cfg *config.Config,
	noMic bool,
	out io.Writer,
) (_err error) {
	logger.Debugf(ctx, "run")
	defer func() { logger.Debugf(ctx, "/run: %v", _err) }()

	store, err := sqlite.New(ctx, cfg.Mailbox.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open the mailbox '%s': %w", cfg.Mailbox.DBPath, err)
	}
	defer store.Close()

	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Mailbox.ListenAddr != "" {
		listener, err := getListener(ctx, cfg.Mailbox.ListenAddr)
		if err != nil {
			return err
		}
		srv := server.New(store)
		logger.Infof(ctx, "serving the mailbox at %v", listener.Addr())
		g.Go(func() error {
			return srv.Serve(ctx, listener)
		})
		g.Go(func() error {
			<-ctx.Done()
			srv.Stop()
			return nil
		})
	}

	g.Go(func() error {
		defer cancelFn()
		return supervise(ctx, fs, cfg, store, noMic, out)
	})

	return g.Wait()
}

// supervise restarts the whole audio pipeline each time a restart is
// requested through the mailbox.
func supervise(
	ctx context.Context,
	fs afero.Fs,
	cfg *config.Config,
	store mailbox.Store,
	noMic bool,
	out io.Writer,
) error {
	results := json.NewEncoder(out)
	for restarts := 0; ; restarts++ {
		err := runPipeline(ctx, fs, cfg, store, noMic, results)
		if !errors.Is(err, activation.ErrRestartRequested{}) {
			return err
		}
		logger.Infof(ctx, "restarting the pipeline (restart #%d)", restarts+1)
	}
}

func runPipeline(
	ctx context.Context,
	fs afero.Fs,
	cfg *config.Config,
	store mailbox.Store,
	noMic bool,
	results *json.Encoder,
) (_err error) {
	logger.Debugf(ctx, "runPipeline")
	defer func() { logger.Debugf(ctx, "/runPipeline: %v", _err) }()

	p, err := newPipeline(ctx, fs, cfg, store, noMic)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Errorf(ctx, "unable to close the pipeline: %v", err)
		}
	}()

	return p.Arbiter.Run(ctx, p.Source, arbiter.HandlerFunc(func(
		ctx context.Context,
		activationCtx *activation.Context,
	) error {
		result, err := p.Dispatcher.Dispatch(ctx, activationCtx)
		if err != nil {
			return err
		}
		if err := results.Encode(result); err != nil {
			return fmt.Errorf("unable to write the result: %w", err)
		}
		if cfg.FollowUp && activationCtx.FromWakeWord() && result.Text != "" {
			p.Arbiter.SkipNextWake()
		}
		p.afterSession(ctx)
		return nil
	}))
}
