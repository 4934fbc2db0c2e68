package router

import "context"

type Option func(*Options)

type Options struct {
	TopK    int
	Context context.Context
}

func WithTopK(topK int) Option {
	return func(o *Options) {
		o.TopK = topK
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:    4,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
