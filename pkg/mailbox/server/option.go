package server

type config struct {
	DedupCacheSize uint
}

func defaultConfig() config {
	return config{
		DedupCacheSize: 1024,
	}
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

// OptionDedupCacheSize sets how many recent message IDs are remembered;
// zero disables deduplication.
type OptionDedupCacheSize uint

func (opt OptionDedupCacheSize) apply(cfg *config) {
	cfg.DedupCacheSize = uint(opt)
}
