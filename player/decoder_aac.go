package player

import (
	"context"
	"fmt"

	faad2 "github.com/llehouerou/go-faad2"

	"github.com/mycophonic/saprobe"
	"github.com/mycophonic/saprobe/adts"
)

// aacDecoder adapts github.com/llehouerou/go-faad2, a WebAssembly FAAD2
// binding, to decoderAdapter. go-faad2's low-level Decoder.Init/Decode
// contract (config once, one frame in, one PCM window out) matches the
// frame pump's per-frame emission model directly: no re-framing needed.
type aacDecoder struct {
	ctx         context.Context //nolint:containedctx // adapter lifetime is bounded by the session, not a single call
	dec         *faad2.Decoder
	initialized bool
	external    []byte
	format      saprobe.PCMFormat
}

func newAACDecoder(ctx context.Context) *aacDecoder {
	return &aacDecoder{ctx: ctx}
}

func (d *aacDecoder) sizes() (externSize, workingSize int) {
	// Two bytes hold a minimal AAC-LC AudioSpecificConfig; go-faad2 itself
	// manages its WASM-heap working memory.
	return 2, 0
}

// configure records an explicit AudioSpecificConfig override, when the
// session's ConfigFunc supplied one. When external is empty or all zero
// (the ConfigFunc left it untouched), the decoder derives its config from
// the first ADTS frame's own header instead.
func (d *aacDecoder) configure(external []byte) error {
	d.external = nil

	for _, b := range external {
		if b != 0 {
			d.external = append([]byte(nil), external...)

			break
		}
	}

	return nil
}

func (d *aacDecoder) reset() error {
	if d.dec != nil {
		_ = d.dec.Close(d.ctx)
	}

	dec, err := faad2.NewDecoder(d.ctx)
	if err != nil {
		return fmt.Errorf("constructing aac decoder: %w", err)
	}

	d.dec = dec
	d.initialized = false

	return nil
}

func (d *aacDecoder) decode(frame []byte) (saprobe.PCMFormat, []int16, error) {
	header, err := adts.Parse(frame)
	if err != nil {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("parsing adts header: %w", ErrDecodeFailed)
	}

	headerLen := adtsHeaderLen(frame)
	if len(frame) < headerLen {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("frame shorter than its own header: %w", ErrDecodeFailed)
	}

	if !d.initialized {
		config := d.external
		if len(config) < 2 {
			config = buildAudioSpecificConfig(header.Profile+1, header.SamplingFreqIndex, header.ChannelConfig)
		}

		if err := d.dec.Init(d.ctx, config); err != nil {
			return saprobe.PCMFormat{}, nil, fmt.Errorf("initializing aac decoder: %w", ErrDecoderInitFailed)
		}

		d.initialized = true
		d.format = saprobe.PCMFormat{
			SampleRate: int(d.dec.SampleRate()),
			BitDepth:   saprobe.Depth16,
			Channels:   uint(d.dec.Channels()),
		}
	}

	samples, err := d.dec.Decode(d.ctx, frame[headerLen:])
	if err != nil {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("decoding aac frame: %w", ErrDecodeFailed)
	}

	return d.format, samples, nil
}

func (d *aacDecoder) close() error {
	if d.dec == nil {
		return nil
	}

	err := d.dec.Close(d.ctx)
	d.dec = nil

	return err
}

// adtsHeaderLen returns 9 when the frame carries the optional CRC field
// (protection_absent bit clear), 7 otherwise.
func adtsHeaderLen(frame []byte) int {
	if len(frame) < 2 {
		return adts.HeaderSize
	}

	if frame[1]&0x01 == 0 {
		return 9
	}

	return 7
}

// buildAudioSpecificConfig packs the minimal two-byte AAC-LC
// AudioSpecificConfig from ADTS header fields, the way go-faad2's own
// OpenADTS constructs it from a parsed ADTS header.
func buildAudioSpecificConfig(objectType, samplingFreqIndex, channelConfig int) []byte {
	config := make([]byte, 2)
	config[0] = byte(objectType<<3) | byte((samplingFreqIndex&0x0E)>>1) //nolint:gosec // values are bounded by ADTS bit widths
	config[1] = byte((samplingFreqIndex&0x01)<<7) | byte(channelConfig<<3) //nolint:gosec // values are bounded by ADTS bit widths

	return config
}
