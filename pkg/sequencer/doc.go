// ABOUTME: Step sequencer engine
// ABOUTME: Channels, tempo-driven transport and the session boundary
// Package sequencer implements a sample-triggering step sequencer.
//
// A Session owns an ordered ChannelSet and a Transport. The Transport fires
// every channel's current step once per sixteenth note (60/BPM/4 seconds)
// and hands triggered buffers to a non-blocking Player. Playback already
// dispatched is never cancelled; Stop only cancels future ticks.
//
// Example:
//
//	s := sequencer.NewSession(sequencer.Config{Player: out})
//	id := s.AddChannel()
//	err := s.LoadSample(id, "kick.wav")
//	err = s.ToggleStep(id, 0)
//	s.Start()
package sequencer
