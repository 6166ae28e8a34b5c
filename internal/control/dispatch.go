// ABOUTME: Command dispatch for the control server
// ABOUTME: Maps protocol messages onto session operations and errors onto codes
package control

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/stepseq-go/internal/protocol"
	"github.com/Resonate-Protocol/stepseq-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
)

var (
	errBadRequest  = errors.New("bad request")
	errUnknownType = errors.New("unknown message type")
)

// dispatch runs one command. A nil reply means the command has no payload to return.
func (s *Server) dispatch(msg protocol.Message) (*protocol.Message, error) {
	switch msg.Type {
	case protocol.TypeChannelAdd:
		id := s.session.AddChannel()
		return &protocol.Message{
			Type:    protocol.TypeChannelAdded,
			Payload: protocol.ChannelRef{ChannelID: string(id)},
		}, nil

	case protocol.TypeChannelDelete:
		var req protocol.ChannelRef
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		return nil, s.session.DeleteChannel(sequencer.ChannelID(req.ChannelID))

	case protocol.TypeChannelLoad:
		var req protocol.ChannelLoad
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		path, err := s.config.Dirs.ConfineSample(req.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return nil, s.session.LoadSample(sequencer.ChannelID(req.ChannelID), path)

	case protocol.TypeStepToggle:
		var req protocol.StepToggle
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		return nil, s.session.ToggleStep(sequencer.ChannelID(req.ChannelID), req.Step)

	case protocol.TypeChannelVolume:
		var req protocol.ChannelVolume
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		return nil, s.session.SetVolume(sequencer.ChannelID(req.ChannelID), req.Volume)

	case protocol.TypeChannelPitch:
		var req protocol.ChannelPitch
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		return nil, s.session.SetPitch(sequencer.ChannelID(req.ChannelID), req.Pitch)

	case protocol.TypeTransportBPM:
		var req protocol.TransportBPM
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		s.session.SetBPM(req.BPM)
		return nil, nil

	case protocol.TypeTransportStart:
		s.session.Start()
		return nil, nil

	case protocol.TypeTransportStop:
		s.session.Stop()
		return nil, nil

	case protocol.TypeSessionExport:
		var req protocol.SessionExport
		if err := decodeRequest(msg, &req); err != nil {
			return nil, err
		}
		if req.Path == "" {
			return nil, fmt.Errorf("%w: export path is empty", errBadRequest)
		}
		path, err := s.config.Dirs.ConfineExport(req.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if err := s.session.Export(path); err != nil {
			return nil, err
		}
		return &protocol.Message{Type: protocol.TypeSessionExported, Payload: protocol.SessionExport{Path: path}}, nil

	case protocol.TypeSessionState:
		return &protocol.Message{
			Type:    protocol.TypeSessionState,
			Payload: StateMessage(s.session.State()),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownType, msg.Type)
	}
}

func decodeRequest(msg protocol.Message, v interface{}) error {
	if err := protocol.DecodePayload(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", errBadRequest, msg.Type, err)
	}
	return nil
}

// ErrorCode classifies a command error for the wire
func ErrorCode(err error) string {
	var decErr *decode.DecodeError
	var expErr *sequencer.ExportError

	switch {
	case errors.Is(err, sequencer.ErrUnknownChannel):
		return "unknown_channel"
	case errors.Is(err, sequencer.ErrStepOutOfRange):
		return "step_out_of_range"
	case errors.As(err, &decErr):
		return "decode_failed"
	case errors.As(err, &expErr):
		return "export_failed"
	case errors.Is(err, errBadRequest):
		return "bad_request"
	case errors.Is(err, errUnknownType):
		return "unknown_type"
	default:
		return "internal"
	}
}

func errorMessage(id string, err error) protocol.Message {
	return protocol.Message{
		Type: protocol.TypeServerError,
		ID:   id,
		Payload: protocol.ServerError{
			Error:   ErrorCode(err),
			Message: err.Error(),
		},
	}
}

// StateMessage converts a session snapshot into its wire form
func StateMessage(state sequencer.SessionState) protocol.SessionState {
	out := protocol.SessionState{
		Playing:  state.Playing,
		Cursor:   state.Cursor,
		Playhead: state.Playhead,
		BPM:      state.BPM,
		Steps:    state.Steps,
		Channels: make([]protocol.ChannelInfo, len(state.Channels)),
	}
	for i, ch := range state.Channels {
		out.Channels[i] = protocol.ChannelInfo{
			ID:     string(ch.ID),
			Name:   ch.Name,
			Steps:  ch.Steps,
			Volume: ch.Volume,
			Pitch:  ch.Pitch,
			Sample: ch.Sample,
		}
	}
	return out
}
