package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zoobzio/railz"
)

// Frame is a parse buffer: each stage consumes bytes from Raw and fills in
// one field. The wire layout is "RZ", a version byte, a big-endian uint16
// length and the payload.
type Frame struct {
	Raw     []byte
	Pos     int
	Version uint8
	Length  uint16
	Payload string
	Err     error
}

// ParseResult is what the finisher extracts from a Frame.
type ParseResult struct {
	OK       bool
	Version  uint8
	Payload  string
	Consumed int
	Err      error
}

var (
	errShortFrame  = errors.New("short frame")
	errBadMagic    = errors.New("bad magic")
	errBadVersion  = errors.New("unsupported version")
	errTrailingRaw = errors.New("trailing bytes")
)

func (f *Frame) take(n int) ([]byte, error) {
	if f.Pos+n > len(f.Raw) {
		return nil, fmt.Errorf("need %d bytes at offset %d: %w", n, f.Pos, errShortFrame)
	}
	b := f.Raw[f.Pos : f.Pos+n]
	f.Pos += n
	return b, nil
}

func (f *Frame) result() ParseResult {
	return ParseResult{
		OK:       f.Err == nil,
		Version:  f.Version,
		Payload:  f.Payload,
		Consumed: f.Pos,
		Err:      f.Err,
	}
}

func recordFrameErr(f *Frame, err error) { f.Err = err }

func newFramePipeline() *railz.Pipeline[Frame, ParseResult] {
	return railz.NewPipeline("frame",
		railz.Finish((*Frame).result),
		railz.NewStage("magic", railz.Apply(func(f *Frame) error {
			b, err := f.take(2)
			if err != nil {
				return err
			}
			if string(b) != "RZ" {
				return fmt.Errorf("%w %q", errBadMagic, b)
			}
			return nil
		}, recordFrameErr)),
		railz.NewStage("version", railz.Apply(func(f *Frame) error {
			b, err := f.take(1)
			if err != nil {
				return err
			}
			f.Version = b[0]
			if f.Version != 1 {
				return fmt.Errorf("%w %d", errBadVersion, f.Version)
			}
			return nil
		}, recordFrameErr)),
		railz.NewStage("length", railz.Apply(func(f *Frame) error {
			b, err := f.take(2)
			if err != nil {
				return err
			}
			f.Length = binary.BigEndian.Uint16(b)
			return nil
		}, recordFrameErr)),
		railz.NewStage("payload", railz.Apply(func(f *Frame) error {
			b, err := f.take(int(f.Length))
			if err != nil {
				return err
			}
			f.Payload = string(b)
			return nil
		}, recordFrameErr)),
		railz.NewStage("end", railz.Apply(func(f *Frame) error {
			if rest := len(f.Raw) - f.Pos; rest > 0 {
				return fmt.Errorf("%w: %d", errTrailingRaw, rest)
			}
			return nil
		}, recordFrameErr)),
	)
}

func encodeFrame(version uint8, payload string) []byte {
	raw := []byte{'R', 'Z', version, 0, 0}
	binary.BigEndian.PutUint16(raw[3:], uint16(len(payload))) //nolint:gosec // G115: demo payloads are short
	return append(raw, payload...)
}

// ParseScenario walks a parse buffer through stages that each consume part
// of a frame, stopping at the first malformed field.
type ParseScenario struct{}

func (*ParseScenario) Name() string { return "parse" }

func (*ParseScenario) Description() string {
	return "Parse buffer: each stage consumes part of a frame until one fails"
}

func (*ParseScenario) Graph() *Definition {
	return &Definition{
		Name: "frame",
		Stages: []Node{
			{ID: "magic", Label: "magic RZ"},
			{ID: "version", Label: "version 1"},
			{ID: "length", Label: "uint16 length"},
			{ID: "payload", Label: "payload"},
			{ID: "end", Label: "no trailing bytes"},
		},
		Finish: Node{ID: "result", Label: "ParseResult"},
	}
}

func (s *ParseScenario) Run(ctx context.Context, e *env) error {
	printHeader(e.out, s)

	full := encodeFrame(1, "hello")
	inputs := []struct {
		name string
		raw  []byte
	}{
		{"well formed", full},
		{"truncated payload", full[:len(full)-2]},
		{"version 2", encodeFrame(2, "hello")},
		{"trailing bytes", append(encodeFrame(1, "hi"), '!')},
	}

	for _, in := range inputs {
		p := newFramePipeline()
		sl, err := watch(e, p)
		if err != nil {
			_ = p.Close()
			return err
		}

		res := runLogged(ctx, sl, p, &Frame{Raw: in.raw})
		fmt.Fprintf(e.out, "\n%s%s%s (% x)\n", colorWhite, in.name, colorReset, in.raw)
		report(e.out, p)
		if res.OK {
			fmt.Fprintf(e.out, "  %-10s v%d %q\n", "result", res.Version, res.Payload)
		} else {
			fmt.Fprintf(e.out, "  %-10s %v after %d bytes\n", "result", res.Err, res.Consumed)
		}
		_ = p.Close()
	}
	return nil
}
