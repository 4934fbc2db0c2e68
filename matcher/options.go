package matcher

import (
	"context"

	"github.com/jimyoyo0329/socagent/record"
)

type Option func(*Options)

type Options struct {
	FilterFields []string
	Context      context.Context
}

func WithFilterFields(fields []string) Option {
	return func(o *Options) {
		o.FilterFields = fields
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		FilterFields: record.DefaultFilterFields,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
