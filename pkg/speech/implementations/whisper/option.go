package whisper

// SampleRate is the only sample rate whisper.cpp accepts.
const SampleRate = 16000

type config struct {
	UseGPU      *bool
	GPUDeviceID *int
	FlashAttn   *bool
	Translate   bool
}

func defaultConfig() config {
	return config{}
}

type Option interface {
	apply(*config)
}

type Options []Option

func (opts Options) apply(cfg *config) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() config {
	cfg := defaultConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionUseGPU bool

func (opt OptionUseGPU) apply(cfg *config) {
	cfg.UseGPU = (*bool)(&opt)
}

type OptionGPUDeviceID int

func (opt OptionGPUDeviceID) apply(cfg *config) {
	cfg.GPUDeviceID = (*int)(&opt)
}

type OptionFlashAttn bool

func (opt OptionFlashAttn) apply(cfg *config) {
	cfg.FlashAttn = (*bool)(&opt)
}

// OptionTranslate makes the model translate the speech into English.
type OptionTranslate bool

func (opt OptionTranslate) apply(cfg *config) {
	cfg.Translate = bool(opt)
}
