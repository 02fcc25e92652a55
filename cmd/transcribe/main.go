package main

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/wakearbiter/pkg/speech/implementations/genai"
)

func syntaxExit(message string) {
	fmt.Fprintf(os.Stderr, "syntax error: %s\n", message)
	pflag.Usage()
	os.Exit(2)
}

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	langFlag := pflag.String("language", "en-US", "")
	backendFlag := pflag.String("backend", "whisper", "allowed values: whisper, genai")
	modelFlag := pflag.String("model", "", "the whisper model path, or the GenAI model name")
	apiKeyEnvFlag := pflag.String("api-key-env", "GEMINI_API_KEY", "the environment variable with the GenAI API key")
	gpuFlag := pflag.Int("gpu", -1, "")
	shouldTranslateFlag := pflag.Bool("translate", false, "")
	printDetailsFlag := pflag.Bool("print-details", false, "print the detected language and the confidence")
	whisperFlags := registerWhisperFlags()
	pflag.Parse()
	if pflag.NArg() != 1 {
		syntaxExit("expected one argument (WAV file path)")
	}
	wavPath := pflag.Arg(0)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	f, err := afero.NewOsFs().Open(wavPath)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	samples, sampleRate, err := pcm.DecodeWAV(f)
	f.Close()
	if err != nil {
		logger.Fatal(ctx, err)
	}
	logger.Debugf(ctx, "read %d samples at %dHz", len(samples), sampleRate)

	var t speech.Transcriber
	switch *backendFlag {
	case "whisper":
		if *modelFlag == "" {
			syntaxExit("--model (the whisper model path) is required for the whisper backend")
		}
		t, err = newWhisper(ctx, whisperFlags, *modelFlag, speech.Language(*langFlag), *gpuFlag, *shouldTranslateFlag)
	case "genai":
		opts := genai.Options{genai.OptionLanguage(speech.Language(*langFlag))}
		if *modelFlag != "" {
			opts = append(opts, genai.OptionModel(*modelFlag))
		}
		t, err = newGenAI(ctx, os.Getenv(*apiKeyEnvFlag), opts)
	default:
		syntaxExit(fmt.Sprintf("unknown backend '%s'", *backendFlag))
	}
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer t.Close()
	logger.Infof(ctx, "initialized a Speech-To-Text engine")

	transcript, err := t.Transcribe(ctx, samples, sampleRate)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	if *printDetailsFlag {
		fmt.Printf("[%s %.2f] ", transcript.Language, transcript.Confidence)
	}
	fmt.Println(transcript.Text)
}

func newGenAI(
	ctx context.Context,
	apiKey string,
	opts genai.Options,
) (speech.Transcriber, error) {
	t, err := genai.New(ctx, apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return t, nil
}
