// ABOUTME: Entry point for the amrplay CLI
// ABOUTME: Opens audio files through the input registry, plays or exports them
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unjello/foo-input-amr/internal/export"
	"github.com/unjello/foo-input-amr/internal/input"
	"github.com/unjello/foo-input-amr/internal/player"
	"github.com/unjello/foo-input-amr/internal/version"
)

var (
	infoOnly = flag.Bool("info", false, "Print stream info and exit")
	seek     = flag.Duration("seek", 0, "Start playback at this offset (e.g. 1m30s)")
	wavPath  = flag.String("wav", "", "Export decoded PCM to a WAV file instead of playing")
	volume   = flag.Int("volume", 100, "Playback volume (0-100)")
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s %s\nusage: amrplay [flags] <file>\n", version.Product, version.Version)
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	log.SetFlags(0)

	// SIGINT aborts in-progress scans and decode steps.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, path); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Fatal("aborted")
		}
		log.Fatalf("amrplay: %v", err)
	}
}

func run(ctx context.Context, path string) error {
	registry := input.Default()

	reason := input.OpenDecode
	if *infoOnly {
		reason = input.OpenInfo
	}

	in, err := registry.OpenFile(ctx, path, reason)
	if err != nil {
		return err
	}
	defer in.Close()

	info := in.Info()
	log.Printf("%s: %v, %d Hz, %d channel(s), %s",
		path, info.Duration.Round(time.Millisecond),
		info.Format.SampleRate, info.Format.Channels, info.Encoding)

	if *infoOnly {
		return nil
	}

	if *seek > 0 {
		if !in.CanSeek() {
			return fmt.Errorf("%s does not support seeking", info.Encoding)
		}
		if err := in.SeekTo(ctx, *seek); err != nil {
			return fmt.Errorf("seek failed: %w", err)
		}
	}

	if *wavPath != "" {
		return exportWAV(ctx, in, *wavPath)
	}
	return play(ctx, in, info)
}

// play streams decoded chunks to the audio device until the stream ends
// or the context is cancelled.
func play(ctx context.Context, in input.Input, info input.Info) error {
	out := player.NewOutput()
	if err := out.Initialize(info.Format); err != nil {
		return err
	}
	defer out.Close()
	out.SetVolume(*volume)

	for {
		chunk, hasMore, err := in.DecodeNext(ctx)
		if err != nil {
			return err
		}
		if !hasMore {
			break
		}
		if err := out.Play(chunk); err != nil {
			return err
		}
	}

	out.Drain()
	return nil
}

// exportWAV decodes the whole stream into a WAV file.
func exportWAV(ctx context.Context, in input.Input, path string) error {
	info := in.Info()
	w, err := export.NewWAVWriter(path, info.Format)
	if err != nil {
		return err
	}

	for {
		chunk, hasMore, err := in.DecodeNext(ctx)
		if err != nil {
			w.Close()
			return err
		}
		if !hasMore {
			break
		}
		if err := w.Write(chunk); err != nil {
			w.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}
	log.Printf("Exported %s", path)
	return nil
}
