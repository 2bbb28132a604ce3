// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockapi

import (
	"fmt"
	"sync"

	"github.com/zhangyunhao116/skipmap"
)

// RealtimeChanMap fans out realtime data to subscribers identified by a key.
// Slow subscribers lose their oldest entries, newer data is more important.
type RealtimeChanMap[T any] struct {
	sm                    *skipmap.StringMap[chan T]
	bufferSize            int
	pendingCloseList      []chan T
	pendingCloseListMutex *sync.Mutex
}

func NewRealtimeChanMap[T any](bufferSize int) *RealtimeChanMap[T] {
	return &RealtimeChanMap[T]{
		sm:                    skipmap.NewString[chan T](),
		bufferSize:            max(bufferSize, 1),
		pendingCloseListMutex: new(sync.Mutex),
	}
}

func (m *RealtimeChanMap[T]) AddPendingClose(c chan T) {
	m.pendingCloseListMutex.Lock()
	m.pendingCloseList = append(m.pendingCloseList, c)
	m.pendingCloseListMutex.Unlock()
}

// ClearPendingClose closes the channels of unsubscribed keys.
// It must not run concurrently with AddNewData.
func (m *RealtimeChanMap[T]) ClearPendingClose() {
	m.pendingCloseListMutex.Lock()
	for _, c := range m.pendingCloseList {
		close(c)
	}
	m.pendingCloseList = nil
	m.pendingCloseListMutex.Unlock()
}

func (m *RealtimeChanMap[T]) Len() int {
	return m.sm.Len()
}

func (m *RealtimeChanMap[T]) Subscribe(key string) (<-chan T, error) {
	// this is required to be a buffered channel, so that it is possible to delete old data in case processing is too slow
	c := make(chan T, m.bufferSize)
	if _, exists := m.sm.LoadOrStore(key, c); exists {
		return nil, fmt.Errorf("already subscribed: %s", key)
	}
	return c, nil
}

func (m *RealtimeChanMap[T]) Unsubscribe(key string) error {
	c, exists := m.sm.LoadAndDelete(key)
	if !exists {
		return fmt.Errorf("cannot unsubscribe %s: not subscribed", key)
	}
	// we should not close the channel here, because this might cause a race condition.
	m.AddPendingClose(c)
	return nil
}

// AddNewData sends data to a single subscriber.
func (m *RealtimeChanMap[T]) AddNewData(key string, data T) error {
	c, exists := m.sm.Load(key)
	if !exists {
		// silently ignore if entry does not exist, as this may happen while unsubscribing
		return nil
	}
	return push(key, c, data)
}

func push[T any](key string, c chan T, data T) error {
	select {
	case c <- data:
		return nil
	// usually if a golang channel is full, we would drop additional data.
	// but new data is much more important in this case, so instead we
	// delete old data.
	default:
		select {
		// try to remove first entry, non-blocking
		case <-c:
			// try again to push the new entry, non-blocking
			select {
			case c <- data:
				return fmt.Errorf("subscriber %s: buffer overflow, old data is being removed", key)
			default:
				return fmt.Errorf("subscriber %s: buffer overflow, new data is being dropped", key)
			}
		default:
			return fmt.Errorf("subscriber %s: buffer cannot be read from or written to", key)
		}
	}
}
