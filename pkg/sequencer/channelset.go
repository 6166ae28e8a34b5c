// ABOUTME: Ordered channel collection
// ABOUTME: Insertion order is the trigger and mixing order
package sequencer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ChannelSet holds the session's channels in insertion order
type ChannelSet struct {
	mu       sync.RWMutex
	channels []*Channel
	numSteps int
	created  int
}

// NewChannelSet creates an empty set whose channels have numSteps steps
func NewChannelSet(numSteps int) *ChannelSet {
	if numSteps < 1 {
		numSteps = DefaultSteps
	}
	return &ChannelSet{numSteps: numSteps}
}

// NumSteps returns the pattern length shared by all channels
func (s *ChannelSet) NumSteps() int {
	return s.numSteps
}

// Add appends a new empty channel
func (s *ChannelSet) Add() *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created++
	ch := NewChannel(ChannelID(uuid.New().String()), fmt.Sprintf("Channel %d", s.created), s.numSteps)
	s.channels = append(s.channels, ch)
	return ch
}

// Remove deletes a channel, keeping the order of the rest
func (s *ChannelSet) Remove(id ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, ch := range s.channels {
		if ch.id == id {
			s.channels = append(s.channels[:i:i], s.channels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove channel %s: %w", id, ErrUnknownChannel)
}

// Get looks up a channel by id
func (s *ChannelSet) Get(id ChannelID) (*Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.channels {
		if ch.id == id {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("channel %s: %w", id, ErrUnknownChannel)
}

// Snapshot returns the channels in order. The slice is owned by the caller.
func (s *ChannelSet) Snapshot() []*Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// Len returns the number of channels
func (s *ChannelSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}
