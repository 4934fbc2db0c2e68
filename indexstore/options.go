package indexstore

import "context"

type Option func(*Options)

type Options struct {
	Location   string
	Collection string
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithCollection(collection string) Option {
	return func(o *Options) {
		o.Collection = collection
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Collection: "alerts",
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
