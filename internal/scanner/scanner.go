// Package scanner turns camera frames into product codes. One interface pair
// covers every capture/decode mechanism: a FrameSource produces frames, a
// Decoder yields zero or one code per frame, and the Poller drives them until
// something decodes or the context ends. Nothing downstream depends on which
// concrete mechanism is active.
package scanner

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// FrameSource produces live frames to scan.
type FrameSource interface {
	NextFrame(ctx context.Context) (image.Image, error)
}

// Decoder inspects a single frame. A frame with no code in it is a miss
// (ok == false), not an error.
type Decoder interface {
	Decode(img image.Image) (code string, ok bool, err error)
}

// DefaultInterval matches the original scan rate of 10 frames per second.
const DefaultInterval = 100 * time.Millisecond

// Poller repeatedly pulls a frame and offers it to the decoder.
type Poller struct {
	source   FrameSource
	decoder  Decoder
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(source FrameSource, decoder Decoder, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		decoder:  decoder,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until a code is decoded, returning the first hit. Frame and
// decode errors are logged and polling continues; the only way out without a
// code is context cancellation.
func (p *Poller) Run(ctx context.Context) (string, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		frame, err := p.source.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			p.logger.Error("failed to capture frame", "error", err)
			continue
		}

		code, ok, err := p.decoder.Decode(frame)
		if err != nil {
			p.logger.Error("failed to decode frame", "error", err)
			continue
		}
		if !ok {
			continue
		}

		return code, nil
	}
}
