// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package bytestream

import (
	"io"
	"sync"

	"gosxmpp.im/xmpp/jid"
)

// Session is an SI (stream-initiation) session as seen by this package:
// the sid, the two endpoints, the payload stream, and the progress
// counters spec.md §4.5.5 requires events for.
type Session struct {
	SID       string
	Initiator jid.JID
	Target    jid.JID
	Size      int64
	Payload   io.ReadWriter

	// OnBytesTransferred, if set, fires after every chunk advances Count.
	OnBytesTransferred func(*Session)
	// OnTransferAborted, if set, fires once if the transfer ends with
	// Count < Size or is explicitly canceled.
	OnTransferAborted func(*Session)

	mu       sync.Mutex
	count    int64
	canceled bool
	done     chan struct{}
}

// Count returns the number of bytes transferred so far.
func (s *Session) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Cancel invalidates the session immediately (spec.md §4.5.5); the
// currently running transfer loop observes its stream closed and exits.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	done := s.done
	s.mu.Unlock()
	if done != nil {
		close(done)
	}
	if c, ok := s.Payload.(io.Closer); ok {
		c.Close()
	}
}

func (s *Session) canceledChan() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
	}
	return s.done
}

func (s *Session) addCount(n int64) {
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()
}

func (s *Session) isCanceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// stream copies exactly Size bytes between conn and Payload (direction
// depends on which side is sending), advancing Count and firing
// OnBytesTransferred per chunk, per spec.md §4.5.5. It stops early and
// returns ErrTransferAborted if the session is canceled or conn closes
// before Size bytes have moved.
func (s *Session) stream(dst io.Writer, src io.Reader) error {
	buf := make([]byte, 32*1024)
	var total int64
	for total < s.Size {
		if s.isCanceled() {
			s.fail()
			return ErrTransferAborted
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				s.fail()
				return werr
			}
			total += int64(n)
			s.addCount(int64(n))
			if s.OnBytesTransferred != nil {
				s.OnBytesTransferred(s)
			}
		}
		if err != nil {
			if total < s.Size {
				s.fail()
				return ErrTransferAborted
			}
			break
		}
	}
	return nil
}

func (s *Session) fail() {
	if s.OnTransferAborted != nil {
		s.OnTransferAborted(s)
	}
}
