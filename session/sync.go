package session

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SubscriptionGroup is the opaque sink the façade broadcasts outgoing
// envelopes through; a transport package implements this over whatever
// wire representation it chooses (see the wire package for the canonical
// encodings of what gets sent).
type SubscriptionGroup interface {
	// Broadcast delivers an envelope to every subscribed peer.
	Broadcast(envelope []byte) error
	// Leave removes peerID from the group, e.g. after a failed sync.
	Leave(peerID string)
}

// syncPipeline tracks one in-progress outbound or inbound synchronization.
type syncPipeline struct {
	correlationID string
	expected      int
	received      int
}

// SetSubscriptionGroup attaches the sink outbound envelopes are broadcast
// through.
func (s *Session) SetSubscriptionGroup(g SubscriptionGroup) { s.group = g }

// Start transitions a fresh Presync session directly to Running, for a
// locally created document that has no peer to synchronize from.
func (s *Session) Start() {
	s.assertf(s.status == Presync, "Start called outside Presync (status=%s)", s.status)
	s.transitionTo(Running)
}

// SyncBegin opens an inbound synchronization pipeline expecting
// itemCount serialized items (users, buffer segments, log entries) and
// returns a correlation id for logging/progress tracking.
func (s *Session) SyncBegin(itemCount int) (string, error) {
	if s.status != Presync {
		return "", newError(SyncProtocolError, "sync-begin received outside Presync status")
	}
	id := uuid.NewString()
	s.pipeline = &syncPipeline{correlationID: id, expected: itemCount}
	s.transitionTo(Synchronizing)
	s.fireSyncProgress("begin", id)
	return id, nil
}

// SyncItem records receipt of one of the items promised by SyncBegin
// (a user, a buffer segment, or a log entry — the caller is responsible
// for actually applying it to the user table/buffer/log).
func (s *Session) SyncItem() error {
	if s.status != Synchronizing || s.pipeline == nil {
		return newError(SyncProtocolError, "sync item received outside an active synchronization")
	}
	s.pipeline.received++
	s.fireSyncProgress("progress", s.pipeline.correlationID)
	return nil
}

// SyncEnd closes the pipeline, verifying the promised item count was met,
// and transitions the session to Running.
func (s *Session) SyncEnd() error {
	if s.status != Synchronizing || s.pipeline == nil {
		return newError(SyncProtocolError, "sync-end received outside an active synchronization")
	}
	if s.pipeline.received != s.pipeline.expected {
		err := newError(SyncProtocolError, errors.Errorf(
			"sync-end: received %d items, expected %d", s.pipeline.received, s.pipeline.expected).Error())
		return s.abortSync(err)
	}
	id := s.pipeline.correlationID
	s.pipeline = nil
	s.transitionTo(Running)
	s.fireSyncProgress("complete", id)
	return nil
}

// SyncCancel aborts an in-progress synchronization, e.g. on a transport
// error or a peer-sent sync-cancel.
func (s *Session) SyncCancel(cause error) error {
	return s.abortSync(wrapError(SyncProtocolError, cause, "sync canceled"))
}

func (s *Session) abortSync(err error) error {
	id := ""
	if s.pipeline != nil {
		id = s.pipeline.correlationID
	}
	s.pipeline = nil
	s.transitionTo(Presync)
	if s.group != nil && id != "" {
		s.group.Leave(id)
	}
	s.fireSyncProgress("failed", id)
	return err
}

// Close tears the session down; it is terminal.
func (s *Session) Close() {
	if s.status == Closed {
		return
	}
	s.transitionTo(Closed)
}

func (s *Session) fireSyncProgress(phase, correlationID string) {
	s.log.Infow("sync progress", "phase", phase, "correlation_id", correlationID)
	for _, h := range s.onSyncProgress {
		h(phase, correlationID)
	}
}
