package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/client"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/implementations/sqlite"
)

func syntaxExit(message string) {
	fmt.Fprintf(os.Stderr, "syntax error: %s\n", message)
	pflag.Usage()
	os.Exit(2)
}

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	remoteAddrFlag := pflag.String("remote-addr", "", "post through the gRPC mailbox of a running wakearbiter")
	dbFlag := pflag.String("db", "mailbox.db", "post directly into this SQLite mailbox (ignored with --remote-addr)")
	timeoutFlag := pflag.Duration("timeout", 5*time.Second, "")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] prompt TEXT... | reset | restart | gesture like|dislike|palm\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	msg, err := parseMessage(pflag.Args())
	if err != nil {
		syntaxExit(err.Error())
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancelFn := context.WithTimeout(ctx, *timeoutFlag)
	defer cancelFn()

	if *remoteAddrFlag != "" {
		c, err := client.New(*remoteAddrFlag)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		defer c.Close()
		id, err := c.Post(ctx, msg)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		logger.Debugf(ctx, "posted %s as %s", msg, id)
		return
	}

	store, err := sqlite.New(ctx, *dbFlag)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer store.Close()
	msg.ID = uuid.NewString()
	if err := store.Insert(ctx, msg); err != nil {
		logger.Fatal(ctx, err)
	}
	logger.Debugf(ctx, "inserted %s as %s", msg, msg.ID)
}

func parseMessage(args []string) (mailbox.Message, error) {
	if len(args) == 0 {
		return mailbox.Message{}, fmt.Errorf("expected a message kind")
	}
	kind, err := mailbox.ParseKind(args[0])
	if err != nil {
		return mailbox.Message{}, err
	}
	args = args[1:]

	msg := mailbox.Message{Kind: kind}
	switch kind {
	case mailbox.KindPrompt:
		msg.Payload = strings.Join(args, " ")
	case mailbox.KindGesture:
		if len(args) != 1 {
			return mailbox.Message{}, fmt.Errorf("expected exactly one gesture")
		}
		msg.Gesture, err = activation.ParseGesture(args[0])
		if err != nil {
			return mailbox.Message{}, err
		}
	default:
		if len(args) != 0 {
			return mailbox.Message{}, fmt.Errorf("'%s' takes no arguments", kind)
		}
	}
	if err := msg.Validate(); err != nil {
		return mailbox.Message{}, err
	}
	return msg, nil
}
