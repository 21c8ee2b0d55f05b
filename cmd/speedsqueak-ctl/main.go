// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/speedsqueak/lib/bus"
	"github.com/bureau-foundation/speedsqueak/lib/config"
	"github.com/bureau-foundation/speedsqueak/lib/process"
	"github.com/bureau-foundation/speedsqueak/lib/record"
	"github.com/bureau-foundation/speedsqueak/lib/service"
	"github.com/bureau-foundation/speedsqueak/lib/version"
)

const binaryName = "speedsqueak-ctl"

// zmqBindings is where each producer binds on the zmq transport.
var zmqBindings = map[string]string{
	bus.TopicSpeed:     "tcp://*:11205",
	bus.TopicCamera:    "tcp://*:11206",
	bus.TopicHeartbeat: "tcp://*:11207",
}

// zmqSettle is how long emit waits after binding before publishing,
// so subscribers have time to reconnect. PUB drops frames sent before
// a subscriber is attached.
const zmqSettle = time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	var (
		configPath  string
		showVersion bool
		limit       int
		reading     float64
		identifier  string
		filePath    string
	)
	flagSet := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to speedsqueak.yaml (default: $SPEEDSQUEAK_CONFIG)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.IntVar(&limit, "limit", 0, "pending: maximum number of records to list")
	flagSet.Float64Var(&reading, "reading", 42, "emit speed: speed reading")
	flagSet.StringVar(&identifier, "uuid", "", "emit: detection identifier")
	flagSet.StringVar(&filePath, "filepath", "", "emit camera: image file reference")
	flagSet.Usage = func() { printUsage(flagSet) }
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		version.Print(binaryName)
		return nil
	}

	positional := flagSet.Args()
	if len(positional) == 0 {
		printUsage(flagSet)
		return errors.New("no command given")
	}

	cfg, err := config.ParseFlag(configPath)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := process.SignalContext(context.Background())
	defer stop()

	switch positional[0] {
	case "status":
		return query(ctx, cfg, "status", nil, stdout)
	case "pending":
		fields := map[string]any{}
		if limit > 0 {
			fields["limit"] = limit
		}
		return query(ctx, cfg, "pending", fields, stdout)
	case "emit":
		if len(positional) != 2 {
			return errors.New("usage: emit speed|camera|heartbeat")
		}
		message, err := buildEvent(positional[1], identifier, reading, filePath, time.Now())
		if err != nil {
			return err
		}
		if err := emit(ctx, cfg.BusOptions(logger), message); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", bus.Format(message))
		return nil
	default:
		return fmt.Errorf("unknown command %q", positional[0])
	}
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] status | pending | emit speed|camera|heartbeat

Flags:
%s`, binaryName, flagSet.FlagUsages())
}

// query calls an action on the uploader's status socket and prints the
// result as indented JSON.
func query(ctx context.Context, cfg *config.Config, action string, fields map[string]any, stdout io.Writer) error {
	var result any
	if err := service.NewClient(cfg.Paths.StatusSocket).Call(ctx, action, fields, &result); err != nil {
		return err
	}
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// buildEvent returns the bus message for an emit command. Bodies are
// validated with the same parsers the uploader uses.
func buildEvent(kind, identifier string, reading float64, filePath string, now time.Time) (bus.Message, error) {
	switch kind {
	case "speed":
		if identifier == "" {
			identifier = uuid.NewString()
		}
		payload := &record.SpeedPayload{
			UUID:      identifier,
			Timestamp: now.Format(time.RFC3339),
			Reading:   reading,
			Direction: "toward",
			Units:     "mph",
		}
		body, err := payload.Marshal()
		if err != nil {
			return bus.Message{}, err
		}
		if _, err := record.ParseSpeed(body); err != nil {
			return bus.Message{}, err
		}
		return bus.Message{Topic: bus.TopicSpeed, Body: body}, nil

	case "camera":
		if identifier == "" || filePath == "" {
			return bus.Message{}, errors.New("emit camera needs --uuid and --filepath")
		}
		body, err := (&record.CameraPayload{UUID: identifier, FilePath: filePath}).Marshal()
		if err != nil {
			return bus.Message{}, err
		}
		return bus.Message{Topic: bus.TopicCamera, Body: body}, nil

	case "heartbeat":
		return bus.Message{Topic: bus.TopicHeartbeat, Body: []byte("emitted by " + binaryName)}, nil

	default:
		return bus.Message{}, fmt.Errorf("unknown event kind %q", kind)
	}
}

func emit(ctx context.Context, options bus.Options, message bus.Message) error {
	publisher, err := bus.OpenPublisher(options, zmqBindings[message.Topic])
	if err != nil {
		return err
	}
	defer publisher.Close()

	if options.Transport == "" || options.Transport == bus.TransportZMQ {
		select {
		case <-time.After(zmqSettle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return publisher.Publish(ctx, message)
}
