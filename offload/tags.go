package offload

import (
	"sync"

	"github.com/google/uuid"

	"github.com/guileen/nativeplan/plan"
)

// Tag records a node's offload exclusion state
type Tag struct {
	Excluded bool   `json:"excluded"`
	Reason   string `json:"reason,omitempty"`
}

// TagSet is a side table of offload tags keyed by plan-node identity.
// Keeping tags off the nodes themselves avoids aliasing surprises while a
// rewrite holds both the old and the replacement node.
type TagSet struct {
	mu   sync.RWMutex
	tags map[uuid.UUID]Tag
}

// NewTagSet creates an empty tag table
func NewTagSet() *TagSet {
	return &TagSet{tags: make(map[uuid.UUID]Tag)}
}

// Set attaches a tag to a node, replacing any existing one
func (s *TagSet) Set(n plan.Node, tag Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[n.ID()] = tag
}

// MarkExcluded records that a node has been excluded from offload consideration
func (s *TagSet) MarkExcluded(n plan.Node, reason string) {
	s.Set(n, Tag{Excluded: true, Reason: reason})
}

// IsExcluded reports whether a node has been marked ineligible for offload
func (s *TagSet) IsExcluded(n plan.Node) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tags[n.ID()].Excluded
}

// Lookup returns the tag attached to a node, if any
func (s *TagSet) Lookup(n plan.Node) (Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.tags[n.ID()]
	return tag, ok
}

// Copy transfers from's tag onto to. No partial state is observable: the
// whole transfer happens under one lock section.
func (s *TagSet) Copy(from, to plan.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag, ok := s.tags[from.ID()]; ok {
		s.tags[to.ID()] = tag
	} else {
		delete(s.tags, to.ID())
	}
}

// Clear removes a node's tag. Called when a node is superseded so a stale
// entry cannot be misread if the old node object is still reachable.
func (s *TagSet) Clear(n plan.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, n.ID())
}
