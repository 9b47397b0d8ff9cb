package api

import (
	"context"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/actor"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

func WithActor(ctx context.Context, a *actor.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

func ActorFromContext(ctx context.Context) *actor.Actor {
	v := ctx.Value(ctxKeyActor)
	if v == nil {
		return nil
	}
	a, _ := v.(*actor.Actor)
	return a
}
