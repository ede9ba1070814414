// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package method

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/executor"
	"github.com/holomush/periscope/internal/reference"
	"github.com/holomush/periscope/pkg/errutil"
)

var tracer = otel.Tracer("periscope/method")

// binding pairs a method with the durable context it executes against. For
// methods found on an ambient object that context has the object as target.
type binding struct {
	entry   *entry
	unbaked *Unbaked
}

// Object is a capability object: the methods visible from one context,
// each bound to its own durable sub-context. It holds no live objects and
// may be kept by a script across ticks.
type Object struct {
	rt       *Runtime
	agent    Agent
	bindings map[string]*binding
	names    []string
}

// Object bakes u on the world goroutine and returns its capability object.
func (u *Unbaked) Object(ctx context.Context) (*Object, error) {
	return executor.Call(ctx, u.rt.executor, func(ctx context.Context) (*Object, error) {
		c, err := u.Bake(ctx)
		if err != nil {
			return nil, err
		}
		return c.CapabilityObject(), nil
	})
}

// Methods returns the visible method names, sorted.
func (o *Object) Methods() []string {
	return append([]string(nil), o.names...)
}

// Has reports whether name is visible on the object.
func (o *Object) Has(name string) bool {
	_, ok := o.bindings[name]
	return ok
}

// Descriptor returns the descriptor bound to name.
func (o *Object) Descriptor(name string) (Descriptor, bool) {
	b, ok := o.bindings[name]
	if !ok {
		return Descriptor{}, false
	}
	return b.entry.desc, true
}

// Doc returns the documentation of name, or "" when it is not visible.
func (o *Object) Doc(name string) string {
	d, _ := o.Descriptor(name)
	return d.Doc
}

// Agent returns the scripting agent found in the context, if any.
func (o *Object) Agent() Agent {
	return o.agent
}

// Target returns the durable context the named method executes against.
func (o *Object) Target(name string) (*Unbaked, bool) {
	b, ok := o.bindings[name]
	if !ok {
		return nil, false
	}
	return b.unbaked, true
}

// Call invokes name with raw script values. The method's cost is charged
// first; a denied charge fails the call without resolving anything.
func (o *Object) Call(ctx context.Context, name string, args ...any) ([]any, error) {
	return o.call(ctx, name, args, func(h *cost.Handler, amount int64) error {
		return h.Charge(amount)
	})
}

// CallAwait is Call that waits for the quota to be reset instead of failing
// when the family's quota is exhausted.
func (o *Object) CallAwait(ctx context.Context, name string, interval time.Duration, args ...any) ([]any, error) {
	return o.call(ctx, name, args, func(h *cost.Handler, amount int64) error {
		return cost.Await(ctx, h, amount, interval)
	})
}

func (o *Object) call(ctx context.Context, name string, raw []any, charge func(*cost.Handler, int64) error) (out []any, err error) {
	b, ok := o.bindings[name]
	if !ok {
		return nil, ErrUnknownMethod(name)
	}
	d := &b.entry.desc

	ctx, span := tracer.Start(ctx, "method.invoke",
		trace.WithAttributes(
			attribute.String("method.name", d.Name),
			attribute.String("method.module", d.Module),
			attribute.Bool("method.world_thread", d.WorldThread),
		),
	)
	started := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		recordCall(d, callStatus(err), started)
	}()

	if err = charge(b.unbaked.handler, d.Cost); err != nil {
		return nil, err
	}

	// Resolution always happens on the world goroutine. World-thread
	// methods run inside the same task; the rest return to the caller.
	var (
		live    *Context
		bound   Arguments
		results []any
	)
	err = o.rt.executor.Submit(ctx, func(ctx context.Context) error {
		c, err := b.unbaked.Bake(ctx)
		if err != nil {
			return err
		}
		if !b.entry.applies(&c.baked) {
			return ErrNotApplicable(d.Name)
		}
		args, err := d.bind(c, raw)
		if err != nil {
			return err
		}
		if !d.WorldThread {
			live, bound = c, args
			return nil
		}
		results, err = b.entry.invoke(ctx, c, args)
		return err
	})
	if err == nil && !d.WorldThread {
		results, err = b.entry.invoke(ctx, live, bound)
	}
	if err != nil {
		errutil.Log(ctx, slog.Default(), logLevel(err), "method call failed", err)
		return nil, err
	}
	return results, nil
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case cost.IsQuotaExceeded(err):
		return StatusQuota
	case reference.IsResolution(err), errutil.HasCode(err, CodeLinkFailed):
		return StatusLinkFailed
	case errutil.HasCode(err, CodeNotApplicable):
		return StatusNotApplicable
	case errutil.HasCode(err, CodeBadArgument):
		return StatusBadArgument
	case errutil.HasCode(err, CodeUnknownMethod):
		return StatusUnknown
	default:
		return StatusError
	}
}

func logLevel(err error) slog.Level {
	if reference.IsResolution(err) || cost.IsQuotaExceeded(err) {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
