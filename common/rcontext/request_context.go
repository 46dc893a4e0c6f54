package rcontext

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

func Initial() RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"nocontext": true}),
	}.populate()
}

type RequestContext struct {
	context.Context

	// Also stored on the context object itself
	Log *logrus.Entry // up.logger
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, "up.logger", c.Log)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, "up.logger", log)
	return RequestContext{
		Context: ctx,
		Log:     log,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

// ReplaceContext swaps the underlying context, keeping the logger. Used to
// attach a caller-supplied cancellation context to a request.
func (c RequestContext) ReplaceContext(ctx context.Context) RequestContext {
	c.Context = ctx
	return c.populate()
}

func (c RequestContext) WithTimeout(d time.Duration) (RequestContext, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context, d)
	return c.ReplaceContext(ctx), cancel
}
