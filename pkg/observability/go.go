package observability

import (
	"context"
)

// Call runs fn and re-panics (after reporting) if it panics.
func Call(ctx context.Context, fn func()) {
	defer func() { PanicIfNotNil(ctx, recover()) }()
	fn()
}

// CallSafe runs fn and only reports a panic.
func CallSafe(ctx context.Context, fn func()) {
	defer func() { ReportPanicIfNotNil(ctx, recover()) }()
	fn()
}

func Go(ctx context.Context, fn func()) {
	go Call(ctx, fn)
}

func GoSafe(ctx context.Context, fn func()) {
	go CallSafe(ctx, fn)
}
