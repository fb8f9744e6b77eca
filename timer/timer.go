// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// TimerTask 以字符串键标识的延时任务，同键重复添加时替换旧任务
type TimerTask struct {
	Key      string
	Execute  time.Time
	Callback func()
	index    int
}

type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*TimerTask)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

type TimerManager struct {
	queue    TimerQueue
	byKey    map[string]*TimerTask
	mutex    sync.Mutex
	trigger  chan *TimerTask
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewTimerManager() *TimerManager {
	manager := &TimerManager{
		queue:    make(TimerQueue, 0),
		byKey:    make(map[string]*TimerTask),
		trigger:  make(chan *TimerTask, 1000),
		stopChan: make(chan struct{}),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

// Schedule 添加延时任务。同键的待执行任务会被替换，不会叠加。
func (m *TimerManager) Schedule(key string, delay time.Duration, callback func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if old, exists := m.byKey[key]; exists && old.index >= 0 {
		heap.Remove(&m.queue, old.index)
	}

	task := &TimerTask{
		Key:      key,
		Execute:  time.Now().Add(delay),
		Callback: callback,
	}
	m.byKey[key] = task
	heap.Push(&m.queue, task)
}

// Cancel 取消待执行任务。任务已触发或不存在时为空操作。
func (m *TimerManager) Cancel(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if task, exists := m.byKey[key]; exists {
		if task.index >= 0 {
			heap.Remove(&m.queue, task.index)
		}
		delete(m.byKey, key)
	}
}

// Pending reports whether a task with the given key is still queued.
func (m *TimerManager) Pending(key string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, exists := m.byKey[key]
	return exists
}

// Stop 停止调度循环，队列中未触发的任务被丢弃
func (m *TimerManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *TimerManager) process() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mutex.Lock()
			now := time.Now()

			for m.queue.Len() > 0 {
				task := m.queue[0]
				if task.Execute.After(now) {
					break
				}

				heap.Pop(&m.queue)
				if m.byKey[task.Key] == task {
					delete(m.byKey, task.Key)
				}
				m.trigger <- task
			}
			m.mutex.Unlock()

		case task := <-m.trigger:
			go task.Callback()

		case <-m.stopChan:
			return
		}
	}
}
