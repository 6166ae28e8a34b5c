// ABOUTME: Command table for the remote control CLI
// ABOUTME: Maps command words to protocol requests and prints the result
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/stepseq-go/internal/protocol"
)

// Requester is the part of the client the commands use
type Requester interface {
	Request(ctx context.Context, msgType string, payload interface{}) (protocol.Message, error)
	RequestState(ctx context.Context, msgType string, payload interface{}) (protocol.SessionState, error)
	AddChannel(ctx context.Context) (string, error)
}

// command builds the request for one command word
type command struct {
	args  int
	build func(args []string) (string, interface{}, error)
}

var commands = map[string]command{
	"state": {0, func([]string) (string, interface{}, error) {
		return protocol.TypeSessionState, nil, nil
	}},
	"delete": {1, func(a []string) (string, interface{}, error) {
		return protocol.TypeChannelDelete, protocol.ChannelRef{ChannelID: a[0]}, nil
	}},
	"load": {2, func(a []string) (string, interface{}, error) {
		return protocol.TypeChannelLoad, protocol.ChannelLoad{ChannelID: a[0], Path: a[1]}, nil
	}},
	"toggle": {2, func(a []string) (string, interface{}, error) {
		step, err := strconv.Atoi(a[1])
		if err != nil {
			return "", nil, fmt.Errorf("invalid step %q", a[1])
		}
		return protocol.TypeStepToggle, protocol.StepToggle{ChannelID: a[0], Step: step}, nil
	}},
	"volume": {2, func(a []string) (string, interface{}, error) {
		v, err := strconv.ParseFloat(a[1], 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid volume %q", a[1])
		}
		return protocol.TypeChannelVolume, protocol.ChannelVolume{ChannelID: a[0], Volume: v}, nil
	}},
	"pitch": {2, func(a []string) (string, interface{}, error) {
		p, err := strconv.Atoi(a[1])
		if err != nil {
			return "", nil, fmt.Errorf("invalid pitch %q", a[1])
		}
		return protocol.TypeChannelPitch, protocol.ChannelPitch{ChannelID: a[0], Pitch: p}, nil
	}},
	"bpm": {1, func(a []string) (string, interface{}, error) {
		bpm, err := strconv.Atoi(a[0])
		if err != nil {
			return "", nil, fmt.Errorf("invalid bpm %q", a[0])
		}
		return protocol.TypeTransportBPM, protocol.TransportBPM{BPM: bpm}, nil
	}},
	"start": {0, func([]string) (string, interface{}, error) {
		return protocol.TypeTransportStart, nil, nil
	}},
	"stop": {0, func([]string) (string, interface{}, error) {
		return protocol.TypeTransportStop, nil, nil
	}},
}

// run executes one command and writes its result to w
func run(ctx context.Context, r Requester, args []string, w io.Writer) error {
	name, rest := args[0], args[1:]

	switch name {
	case "add":
		id, err := r.AddChannel(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
		return nil

	case "export":
		if len(rest) != 1 {
			return fmt.Errorf("export takes 1 argument, got %d", len(rest))
		}
		msg, err := r.Request(ctx, protocol.TypeSessionExport, protocol.SessionExport{Path: rest[0]})
		if err != nil {
			return err
		}
		var done protocol.SessionExport
		if err := protocol.DecodePayload(msg.Payload, &done); err != nil {
			return err
		}
		fmt.Fprintf(w, "exported %s\n", done.Path)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	if len(rest) != cmd.args {
		return fmt.Errorf("%s takes %d argument(s), got %d", name, cmd.args, len(rest))
	}

	msgType, payload, err := cmd.build(rest)
	if err != nil {
		return err
	}

	state, err := r.RequestState(ctx, msgType, payload)
	if err != nil {
		return err
	}
	printState(w, state)
	return nil
}

// printState renders the session as a compact text grid
func printState(w io.Writer, state protocol.SessionState) {
	transport := "stopped"
	if state.Playing {
		transport = fmt.Sprintf("playing step %d", state.Playhead+1)
	}
	fmt.Fprintf(w, "%d BPM, %d steps, %s\n", state.BPM, state.Steps, transport)

	for _, ch := range state.Channels {
		var grid strings.Builder
		for i, on := range ch.Steps {
			switch {
			case on:
				grid.WriteByte('x')
			case i%4 == 0:
				grid.WriteByte('|')
			default:
				grid.WriteByte('.')
			}
		}

		sample := ch.Sample
		if sample == "" {
			sample = "-"
		}
		fmt.Fprintf(w, "%s  %-12s %s  vol %.2f  pitch %+d  %s\n", ch.ID, ch.Name, grid.String(), ch.Volume, ch.Pitch, sample)
	}
}
