package capture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xaionaro-go/screenrecorder/pkg/capture/types"
)

type sendState int

const (
	inputNotSent = sendState(iota)
	inputSent
)

// pump feeds the input at most once and consumes every output the stage is
// willing to produce. No output at all is not an error.
func pump[I, O any](
	ctx context.Context,
	input I,
	send func(context.Context, I) error,
	receive func(context.Context) (O, error),
	consume func(O),
) error {
	state := inputNotSent
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if state == inputNotSent {
			err := send(ctx, input)
			switch {
			case err == nil:
				state = inputSent
			case errors.Is(err, types.ErrAgain):
				// the pending outputs need to be consumed first
			default:
				return fmt.Errorf("unable to send: %w", err)
			}
		}

		output, err := receive(ctx)
		switch {
		case err == nil:
			consume(output)
			continue
		case errors.Is(err, types.ErrAgain), errors.Is(err, io.EOF):
			if state == inputSent {
				return nil
			}
			return fmt.Errorf("the input was rejected while no output is pending: %w", err)
		default:
			return fmt.Errorf("unable to receive: %w", err)
		}
	}
}
