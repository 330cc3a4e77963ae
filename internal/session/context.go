package session

import "context"

type controllerCtxKeyType string

const controllerCtxKey controllerCtxKeyType = "sessionController"

func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, controllerCtxKey, c)
}

func FromContext(ctx context.Context) *Controller {
	c, ok := ctx.Value(controllerCtxKey).(*Controller)
	if !ok {
		panic("session controller not present in context")
	}
	return c
}
