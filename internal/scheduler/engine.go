package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

// Key identifies a pending wake. The regular schedule and a snooze for the
// same alarm use different keys so one never replaces the other.
type Key struct {
	AlarmID int64
	Snooze  bool
}

func (k Key) String() string {
	if k.Snooze {
		return fmt.Sprintf("alarm-%d/snooze", k.AlarmID)
	}
	return fmt.Sprintf("alarm-%d", k.AlarmID)
}

// Payload travels with the wake and is handed back to the consumer as is.
type Payload struct {
	AlarmID int64
	Label   string
}

type WakeEvent struct {
	Key     Key
	Payload Payload
	FireAt  time.Time
}

type queueItem struct {
	event WakeEvent
	index int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.FireAt.Before(pq[j].event.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// Engine is an in-process one-shot timer service. At most one wake is
// pending per Key; registering again under the same Key moves it.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	byKey   map[Key]*queueItem
	out     chan WakeEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	exact   atomic.Bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:  make(priorityQueue, 0),
		byKey:  make(map[Key]*queueItem),
		out:    make(chan WakeEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	e.exact.Store(true)
	return e
}

func (e *Engine) C() <-chan WakeEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	started := e.started
	close(e.stopCh)
	e.mu.Unlock()
	if started {
		<-e.doneCh
	}
}

// CanScheduleExact reports whether exact wakes are currently permitted.
func (e *Engine) CanScheduleExact() bool {
	return e.exact.Load()
}

func (e *Engine) SetExactAllowed(allowed bool) {
	e.exact.Store(allowed)
}

// RegisterOneShot arms a wake for key at the given instant, replacing any
// wake already pending under key.
func (e *Engine) RegisterOneShot(key Key, at time.Time, payload Payload) error {
	if at.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}

	ev := WakeEvent{Key: key, Payload: payload, FireAt: at}
	if item, ok := e.byKey[key]; ok {
		item.event = ev
		heap.Fix(&e.queue, item.index)
	} else {
		item := &queueItem{event: ev}
		heap.Push(&e.queue, item)
		e.byKey[key] = item
	}
	e.signalWakeup()
	return nil
}

// Cancel drops the wake pending under key, if any.
func (e *Engine) Cancel(key Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.byKey[key]
	if !ok {
		return
	}
	heap.Remove(&e.queue, item.index)
	delete(e.byKey, key)
	e.signalWakeup()
}

func (e *Engine) Pending(key Key) (WakeEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.byKey[key]
	if !ok {
		return WakeEvent{}, false
	}
	return item.event, true
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Dropped counts due wakes that were still undelivered when the engine stopped.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for i, ev := range due {
				select {
				case e.out <- ev:
				case <-e.stopCh:
					atomic.AddUint64(&e.dropped, uint64(len(due)-i))
					return
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (WakeEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return WakeEvent{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []WakeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]WakeEvent, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].event
		if next.FireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(*queueItem)
		delete(e.byKey, item.event.Key)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
