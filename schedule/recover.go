// seehuhn.de/go/pagerender - a tiled page renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package schedule

import (
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"

	"seehuhn.de/go/pagerender/cache"
)

// deviceLost fails all pending keys and starts resetting the device.
func (s *Scheduler) deviceLost(err error) {
	for _, k := range s.cache.FailPending(err) {
		if !slices.Contains(s.lost, k) {
			s.lost = append(s.lost, k)
		}
	}
	if s.recovering {
		return
	}
	s.recovering = true
	s.log.Warn("device lost", "failed", len(s.lost), "error", err)

	s.mu.Lock()
	s.busy++
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.push(result{reset: true, err: s.resetDevice()})
	}()
}

// resetDevice tries to reset the device, with exponentially growing
// delays between attempts.
func (s *Scheduler) resetDevice() error {
	eb := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(s.retryInterval),
		backoff.WithMaxElapsedTime(0),
	)
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.maxRetries)), s.ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := s.dev.Reset(s.ctx)
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		return err
	}
	notify := func(err error, d time.Duration) {
		s.log.Warn("device reset failed", "attempt", attempt, "retry_in", d, "error", err)
	}
	return backoff.RetryNotify(op, b, notify)
}

// deviceReset re-issues the failed jobs after a successful reset.  If the
// reset failed, the affected keys stay Failed until they are requested
// again.
func (s *Scheduler) deviceReset(err error) {
	s.recovering = false
	keys := s.lost
	s.lost = nil

	if err != nil {
		s.log.Error("device could not be reset", "failed", len(keys), "error", err)
		return
	}

	var reissue []cache.Key
	for _, k := range keys {
		if s.wanted[k.Page] == k && s.cache.Lookup(k).State == cache.Failed {
			reissue = append(reissue, k)
		}
	}
	s.log.Info("device restored", "reissued", len(reissue))
	for _, k := range reissue {
		s.start(k)
	}
}
