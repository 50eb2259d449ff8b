package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/mycophonic/saprobe"
	"github.com/mycophonic/saprobe/player"
)

// defaultChunkBytes bounds how much compressed input play reads from the
// file per push.
const defaultChunkBytes = 32 * 1024

var (
	errInvalidLogLevel = errors.New("invalid log level")
	errInvalidArgCount = errors.New("expected exactly one argument: file path")
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Stream an MP3 or AAC/ADTS elementary stream to the speakers",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "chunk-bytes",
				Value: defaultChunkBytes,
				Usage: "bytes read from the input file per push",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "zerolog level: debug, info, warn, error, disabled",
			},
		},
		Action: runPlay,
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	level, err := zerolog.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.String("log-level"), errInvalidLogLevel)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	path := cmd.Args().First()

	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return streamToSpeakers(ctx, file, int(cmd.Int("chunk-bytes")), &logger)
}

// speakerSink bridges the player package's push-per-frame Output callback
// to oto/v2's pull-based io.Reader player, the same io.Pipe adapter shape
// the player package's own mp3 decoder adapter uses for go-mp3.
type speakerSink struct {
	logger *zerolog.Logger

	pw     *io.PipeWriter
	otoCtx *oto.Context
	otoP   oto.Player
}

func (s *speakerSink) output(format saprobe.PCMFormat, samples []int16) {
	if s.otoCtx == nil {
		pr, pw := io.Pipe()
		s.pw = pw

		otoCtx, ready, err := oto.NewContext(format.SampleRate, int(format.Channels), 2)
		if err != nil {
			s.logger.Error().Err(err).Msg("opening audio output")

			return
		}

		<-ready

		s.otoCtx = otoCtx
		s.otoP = otoCtx.NewPlayer(pr)
		s.otoP.Play()
	}

	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		buf[2*i] = byte(sample)
		buf[2*i+1] = byte(sample >> 8) //nolint:gosec // intentional bit reinterpretation
	}

	if _, err := s.pw.Write(buf); err != nil {
		s.logger.Error().Err(err).Msg("writing to audio output")
	}
}

func (s *speakerSink) close() {
	if s.pw != nil {
		_ = s.pw.Close()
	}

	if s.otoP != nil {
		for s.otoP.IsPlaying() {
			time.Sleep(50 * time.Millisecond)
		}

		_ = s.otoP.Close()
	}
}

func streamToSpeakers(ctx context.Context, file *os.File, chunkBytes int, logger *zerolog.Logger) error {
	input := func() ([]byte, error) {
		buf := make([]byte, chunkBytes)

		n, err := file.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}

		return nil, err
	}

	stream := player.NewStream(input)
	sink := &speakerSink{logger: logger}
	defer sink.close()

	p := &player.Player{
		Log: logger,
		Config: func(audioType player.AudioType, _ []byte) {
			logger.Info().Stringer("audio_type", audioType).Msg("stream classified")
		},
		Output: sink.output,
	}

	if err := p.Init(stream); err != nil {
		return fmt.Errorf("initializing player: %w", err)
	}

	defer p.Finish() //nolint:errcheck // best-effort cleanup on an already-terminal path

	runErr := make(chan error, 1)

	go func() {
		runErr <- p.Run()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-runErr:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("playing %s: %w", file.Name(), err)
		}

		return nil
	}
}
