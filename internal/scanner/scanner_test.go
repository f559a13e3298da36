package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/babyland-store/babyland/internal/domain"
	"github.com/babyland-store/babyland/internal/qr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSource struct {
	frames int
	err    error
}

func (s *stubSource) NextFrame(context.Context) (image.Image, error) {
	s.frames++
	if s.err != nil {
		return nil, s.err
	}
	return image.NewGray(image.Rect(0, 0, 1, 1)), nil
}

type outcome struct {
	code string
	ok   bool
	err  error
}

// scriptedDecoder replays a fixed sequence of decode outcomes.
type scriptedDecoder struct {
	outcomes []outcome
	calls    int
}

func (d *scriptedDecoder) Decode(image.Image) (string, bool, error) {
	if d.calls >= len(d.outcomes) {
		return "", false, nil
	}
	o := d.outcomes[d.calls]
	d.calls++
	return o.code, o.ok, o.err
}

func TestPoller_Run(t *testing.T) {
	t.Run("returns the first decoded code", func(t *testing.T) {
		decoder := &scriptedDecoder{outcomes: []outcome{
			{code: "", ok: false},
			{err: errors.New("blurry frame")},
			{code: "BL-001", ok: true},
		}}

		poller := NewPoller(&stubSource{}, decoder, time.Millisecond, testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		code, err := poller.Run(ctx)
		if err != nil {
			t.Fatalf("poll failed: %v", err)
		}
		if code != "BL-001" {
			t.Errorf("expected BL-001, got %q", code)
		}
		if decoder.calls != 3 {
			t.Errorf("expected 3 decode attempts, got %d", decoder.calls)
		}
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		poller := NewPoller(&stubSource{}, &scriptedDecoder{}, time.Millisecond, testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := poller.Run(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("keeps polling through source errors", func(t *testing.T) {
		source := &stubSource{err: errors.New("camera busy")}
		poller := NewPoller(source, &scriptedDecoder{}, time.Millisecond, testLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := poller.Run(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
		if source.frames < 2 {
			t.Errorf("expected polling to continue after errors, got %d frames", source.frames)
		}
	})
}

type fakeLookup struct {
	products map[string]domain.Product
}

func (f *fakeLookup) GetByCode(_ context.Context, code string) (*domain.Product, error) {
	p, ok := f.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func newScanHandler() *Handler {
	lookup := &fakeLookup{products: map[string]domain.Product{
		"BL-001": {
			ID:    "prod-1",
			Code:  "BL-001",
			Name:  "Baby blanket",
			Price: decimal.RequireFromString("19.90"),
		},
	}}
	return NewHandler(NewQRDecoder(), lookup, testLogger())
}

func blankPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode blank png: %v", err)
	}
	return buf.Bytes()
}

func TestHandler_HandleScan(t *testing.T) {
	t.Run("decodes a frame and resolves the product", func(t *testing.T) {
		frame, err := qr.LabelPNG("BL-001", 256)
		if err != nil {
			t.Fatalf("failed to render label: %v", err)
		}

		handler := newScanHandler()
		req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(frame))
		rec := httptest.NewRecorder()

		handler.HandleScan(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp scanResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Code != "BL-001" {
			t.Errorf("expected code BL-001, got %q", resp.Code)
		}
		if resp.Product == nil || resp.Product.ID != "prod-1" {
			t.Errorf("expected resolved product, got %+v", resp.Product)
		}
	})

	t.Run("returns 404 for a code without a product", func(t *testing.T) {
		frame, err := qr.LabelPNG("UNKNOWN-9", 256)
		if err != nil {
			t.Fatalf("failed to render label: %v", err)
		}

		handler := newScanHandler()
		req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(frame))
		rec := httptest.NewRecorder()

		handler.HandleScan(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("returns 422 for a frame without a QR code", func(t *testing.T) {
		handler := newScanHandler()
		req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(blankPNG(t)))
		rec := httptest.NewRecorder()

		handler.HandleScan(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d", rec.Code)
		}
	})

	t.Run("returns 400 for a body that is not an image", func(t *testing.T) {
		handler := newScanHandler()
		req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader([]byte("not an image")))
		rec := httptest.NewRecorder()

		handler.HandleScan(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}
