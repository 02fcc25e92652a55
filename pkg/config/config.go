package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Audio         AudioConfig         `yaml:"audio"`
	VAD           VADConfig           `yaml:"vad"`
	WakeWord      WakeWordConfig      `yaml:"wake_word"`
	Capture       CaptureConfig       `yaml:"capture"`
	Gesture       GestureConfig       `yaml:"gesture"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Mailbox       MailboxConfig       `yaml:"mailbox"`
	Chime         ChimeConfig         `yaml:"chime"`

	// FollowUp skips the wake word once after a spoken session, so the
	// user can answer the assistant right away.
	FollowUp bool `yaml:"follow_up"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func (c LoggingConfig) LoggerLevel() (logger.Level, error) {
	var level logger.Level
	if err := level.Set(c.Level); err != nil {
		return logger.LevelUndefined, fmt.Errorf("unable to parse logging level '%s': %w", c.Level, err)
	}
	return level, nil
}

type AudioConfig struct {
	// Backend is "portaudio", "auto" or "wav".
	Backend     string `yaml:"backend"`
	Device      string `yaml:"device"`
	SampleRate  int    `yaml:"sample_rate"`
	FrameLength int    `yaml:"frame_length"`

	// InputPath is the WAV file read by the "wav" backend.
	InputPath string `yaml:"input_path"`
	Realtime  bool   `yaml:"realtime"`

	// RecordPath, if set, receives a copy of everything the microphone hears.
	RecordPath string `yaml:"record_path"`
}

type VADConfig struct {
	// Implementation is "libfvad" or "spectralflux".
	Implementation string   `yaml:"implementation"`
	Mode           int      `yaml:"mode"`
	FluxRatio      float64  `yaml:"flux_ratio"`
	QuietTime      Duration `yaml:"quiet_time"`
}

type WakeWordConfig struct {
	// Implementation is "keyword" or "command".
	Implementation  string   `yaml:"implementation"`
	Keywords        []string `yaml:"keywords"`
	Sensitivity     float64  `yaml:"sensitivity"`
	ModelPath       string   `yaml:"model_path"`
	ContextPath     string   `yaml:"context_path"`
	RequireEndpoint bool     `yaml:"require_endpoint"`

	// Command is the external detector executable (implementation "command").
	Command      string   `yaml:"command"`
	ReadyTimeout Duration `yaml:"ready_timeout"`
}

type CaptureConfig struct {
	StartTimeout   Duration `yaml:"start_timeout"`
	SilenceTimeout Duration `yaml:"silence_timeout"`
	MaxDuration    Duration `yaml:"max_duration"`
	PreRoll        Duration `yaml:"pre_roll"`
}

type GestureConfig struct {
	Window          Duration `yaml:"window"`
	Threshold       uint     `yaml:"threshold"`
	DirectiveFormat string   `yaml:"directive_format"`
}

type TranscriptionConfig struct {
	// Offline selects the local whisper backend instead of the online one.
	Offline  bool    `yaml:"offline"`
	Language string  `yaml:"language"`
	Whisper  Whisper `yaml:"whisper"`
	GenAI    GenAI   `yaml:"genai"`
}

type Whisper struct {
	ModelPath string `yaml:"model_path"`
	UseGPU    bool   `yaml:"use_gpu"`
	GPU       int    `yaml:"gpu"`
}

type GenAI struct {
	Model     string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

func (g GenAI) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}

type MailboxConfig struct {
	DBPath     string `yaml:"db_path"`
	// ListenAddr, if set, serves the mailbox over gRPC.
	ListenAddr string `yaml:"listen_addr"`
}

type ChimeConfig struct {
	// Path to a WAV file; empty disables the chime.
	Path string `yaml:"path"`
}

func Default() *Config {
	format := pcm.DefaultFormat()
	wakeCfg := wakeword.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level: logger.LevelInfo.String(),
		},
		Audio: AudioConfig{
			Backend:     "portaudio",
			SampleRate:  format.SampleRate,
			FrameLength: format.FrameLength,
		},
		VAD: VADConfig{
			Implementation: "libfvad",
			Mode:           3,
			FluxRatio:      1.75,
			QuietTime:      Duration(200 * time.Millisecond),
		},
		WakeWord: WakeWordConfig{
			Implementation: "keyword",
			Keywords:       wakeCfg.Keywords,
			Sensitivity:    wakeCfg.Sensitivity,
			ReadyTimeout:   Duration(10 * time.Second),
		},
		Capture: CaptureConfig{
			StartTimeout:   Duration(5 * time.Second),
			SilenceTimeout: Duration(time.Second),
			MaxDuration:    Duration(15 * time.Second),
			PreRoll:        Duration(300 * time.Millisecond),
		},
		Gesture: GestureConfig{
			Window:          Duration(4 * time.Second),
			Threshold:       3,
			DirectiveFormat: "GestureNet: %s",
		},
		Transcription: TranscriptionConfig{
			Language: "en",
			GenAI:    GenAI{Model: "gemini-2.0-flash", APIKeyEnv: "GEMINI_API_KEY"},
		},
		Mailbox: MailboxConfig{
			DBPath: "mailbox.db",
		},
	}
}

// Load reads the YAML file at path on top of Default. A missing file yields
// the defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("unable to read config '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) Save(fs afero.Fs, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to serialize the config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("unable to write config '%s': %w", path, err)
	}
	return nil
}

func (cfg *Config) Validate() error {
	var errs []error

	if _, err := cfg.Logging.LoggerLevel(); err != nil {
		errs = append(errs, err)
	}

	switch cfg.Audio.Backend {
	case "portaudio", "auto":
	case "wav":
		if cfg.Audio.InputPath == "" {
			errs = append(errs, fmt.Errorf("audio.input_path is required for the wav backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown audio.backend '%s'", cfg.Audio.Backend))
	}
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive"))
	}
	if cfg.Audio.FrameLength <= 0 {
		errs = append(errs, fmt.Errorf("audio.frame_length must be positive"))
	}

	switch cfg.VAD.Implementation {
	case "libfvad":
		if cfg.VAD.Mode < 0 || cfg.VAD.Mode > 3 {
			errs = append(errs, fmt.Errorf("vad.mode must be in [0, 3]"))
		}
	case "spectralflux":
		if cfg.VAD.FluxRatio <= 1 {
			errs = append(errs, fmt.Errorf("vad.flux_ratio must be greater than 1"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vad.implementation '%s'", cfg.VAD.Implementation))
	}

	switch cfg.WakeWord.Implementation {
	case "keyword":
		if len(cfg.WakeWord.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("wake_word.keywords must not be empty"))
		}
	case "command":
		if cfg.WakeWord.Command == "" {
			errs = append(errs, fmt.Errorf("wake_word.command is required for the command implementation"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown wake_word.implementation '%s'", cfg.WakeWord.Implementation))
	}
	if err := cfg.WakeWordConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("wake_word: %w", err))
	}

	if cfg.Capture.StartTimeout <= 0 || cfg.Capture.SilenceTimeout <= 0 || cfg.Capture.MaxDuration <= 0 {
		errs = append(errs, fmt.Errorf("capture timeouts must be positive"))
	}
	if cfg.Capture.PreRoll < 0 {
		errs = append(errs, fmt.Errorf("capture.pre_roll must not be negative"))
	}

	if cfg.Gesture.Window <= 0 {
		errs = append(errs, fmt.Errorf("gesture.window must be positive"))
	}
	if cfg.Gesture.Threshold == 0 {
		errs = append(errs, fmt.Errorf("gesture.threshold must be positive"))
	}
	if strings.Count(cfg.Gesture.DirectiveFormat, "%s") != 1 {
		errs = append(errs, fmt.Errorf("gesture.directive_format must contain exactly one %%s"))
	}

	if cfg.Transcription.Offline && cfg.Transcription.Whisper.ModelPath == "" {
		errs = append(errs, fmt.Errorf("transcription.whisper.model_path is required in the offline mode"))
	}

	if cfg.Mailbox.DBPath == "" {
		errs = append(errs, fmt.Errorf("mailbox.db_path must not be empty"))
	}

	return errors.Join(errs...)
}

func (cfg *Config) Format() pcm.Format {
	return pcm.Format{
		SampleRate:  cfg.Audio.SampleRate,
		FrameLength: cfg.Audio.FrameLength,
	}
}

func (cfg *Config) WakeWordConfig() wakeword.Config {
	return wakeword.Config{
		Keywords:        cfg.WakeWord.Keywords,
		Sensitivity:     cfg.WakeWord.Sensitivity,
		ModelPath:       cfg.WakeWord.ModelPath,
		ContextPath:     cfg.WakeWord.ContextPath,
		RequireEndpoint: cfg.WakeWord.RequireEndpoint,
	}
}
