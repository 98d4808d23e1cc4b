package api

import "context"

type ctxKey string

const ctxKeyActor ctxKey = "actor"

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// ActorFromContext reports who is driving the request; defaults to
// "customer" for the public endpoints.
func ActorFromContext(ctx context.Context) string {
	v := ctx.Value(ctxKeyActor)
	if v == nil {
		return "customer"
	}
	s, _ := v.(string)
	if s == "" {
		return "customer"
	}
	return s
}
