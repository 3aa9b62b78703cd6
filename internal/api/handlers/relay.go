package handlers

import (
	"context"
	"errors"

	"github.com/adsero/adsero-assistant/internal/providers"
)

// Messages written to the client when a stream ends abnormally
const (
	msgTimeout   = "Response exceeded the maximum duration"
	msgTruncated = "Provider stream ended unexpectedly"
)

// sink receives the parts of one assistant turn
type sink interface {
	Text(s string) error
	Error(msg string) error
	Finish(reason string) error
}

// relay copies provider chunks to out until the provider finishes, fails or
// ctx expires. Exactly one terminal part (finish or error) is written unless
// writing to out fails.
func relay(ctx context.Context, out sink, stream <-chan providers.StreamChunk) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errors.Join(ctx.Err(), out.Error(msgTimeout))
			}
			return ctx.Err()

		case chunk, ok := <-stream:
			if !ok {
				if err := ctx.Err(); err != nil && errors.Is(err, context.DeadlineExceeded) {
					return errors.Join(err, out.Error(msgTimeout))
				}
				return errors.Join(errors.New("provider closed stream without finishing"), out.Error(msgTruncated))
			}

			if chunk.Error != "" {
				return errors.Join(errors.New(chunk.Error), out.Error(chunk.Error))
			}
			if chunk.Delta != "" {
				if err := out.Text(chunk.Delta); err != nil {
					return err
				}
			}
			if chunk.FinishReason != "" {
				return out.Finish(chunk.FinishReason)
			}
		}
	}
}
