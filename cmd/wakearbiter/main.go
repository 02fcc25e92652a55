package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	_ "github.com/xaionaro-go/audio/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/audio/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/config"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm/implementations/portaudio"
)

const (
	exitCodeFailure       = 1
	exitCodeSyntax        = 2
	exitCodeActivationKey = 3
	exitCodeDeviceFailure = 4
)

func syntaxExit(message string) {
	fmt.Fprintf(os.Stderr, "syntax error: %s\n", message)
	pflag.Usage()
	os.Exit(exitCodeSyntax)
}

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "wakearbiter.yaml", "path to the YAML config; a missing file means the defaults")
	micFlag := pflag.String("mic", "", "a substring of the input device name; the last matching device wins")
	offlineFlag := pflag.Bool("offline", false, "transcribe locally with whisper instead of the online backend")
	noMicFlag := pflag.Bool("no-mic", false, "do not open a microphone; react only to the mailbox")
	listDevicesFlag := pflag.Bool("list-devices", false, "print the audio input devices and exit")
	followUpFlag := pflag.Bool("follow-up", false, "after a spoken session listen again without waiting for the wake word")
	grpcAddrFlag := pflag.String("grpc-addr", "", "serve the mailbox over gRPC at this address")
	dbFlag := pflag.String("db", "", "path to the SQLite mailbox")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()
	if pflag.NArg() != 0 {
		syntaxExit("no arguments expected")
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	if *listDevicesFlag {
		devices, err := portaudio.ListDevices(ctx)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		for _, d := range devices {
			fmt.Println(d)
		}
		return
	}

	fs := afero.NewOsFs()
	cfg, level, err := loadConfig(fs, *configPath)
	if err != nil {
		syntaxExit(err.Error())
	}

	if !pflag.Lookup("log-level").Changed {
		l = l.WithLevel(level)
		ctx = logger.CtxWithLogger(ctx, l)
	}
	if *micFlag != "" {
		cfg.Audio.Device = *micFlag
	}
	if *offlineFlag {
		cfg.Transcription.Offline = true
	}
	if *followUpFlag {
		cfg.FollowUp = true
	}
	if *grpcAddrFlag != "" {
		cfg.Mailbox.ListenAddr = *grpcAddrFlag
	}
	if *dbFlag != "" {
		cfg.Mailbox.DBPath = *dbFlag
	}
	if err := cfg.Validate(); err != nil {
		syntaxExit(err.Error())
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()

	err = run(ctx, fs, cfg, *noMicFlag, os.Stdout)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Infof(ctx, "stopped")
	default:
		logger.Error(ctx, err)
		belt.Flush(ctx)
		os.Exit(exitCode(err))
	}
}

// loadConfig reads the config file and parses its logging level. Any error
// here is a mistake in the user's input.
func loadConfig(fs afero.Fs, path string) (*config.Config, logger.Level, error) {
	cfg, err := config.Load(fs, path)
	if err != nil {
		return nil, logger.LevelUndefined, err
	}
	level, err := cfg.Logging.LoggerLevel()
	if err != nil {
		return nil, logger.LevelUndefined, err
	}
	return cfg, level, nil
}

func exitCode(err error) int {
	var keyErr activation.ErrActivationKey
	if errors.As(err, &keyErr) {
		return exitCodeActivationKey
	}
	var devErr activation.ErrDeviceFailure
	if errors.As(err, &devErr) {
		return exitCodeDeviceFailure
	}
	return exitCodeFailure
}
