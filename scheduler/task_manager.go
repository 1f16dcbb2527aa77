package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"dispodeals/models"
)

// Scanner scans one live menu page
type Scanner interface {
	ScanURL(ctx context.Context, url string) (*models.ScanResult, error)
}

const (
	taskQueueSize   = 100
	taskRetention   = time.Hour
	cleanupInterval = time.Minute
)

// TaskManager runs async scan tasks on a fixed pool of workers
type TaskManager struct {
	tasks       map[string]*models.ScanTask
	taskQueue   chan *models.ScanTask
	maxWorkers  int
	busyWorkers atomic.Int32
	scanner     Scanner
	scanTimeout time.Duration
	mutex       sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewTaskManager creates a task manager and starts its workers
func NewTaskManager(scanner Scanner, maxWorkers int, scanTimeout time.Duration) *TaskManager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if scanTimeout <= 0 {
		scanTimeout = 2 * time.Minute
	}

	tm := &TaskManager{
		tasks:       make(map[string]*models.ScanTask),
		taskQueue:   make(chan *models.ScanTask, taskQueueSize),
		maxWorkers:  maxWorkers,
		scanner:     scanner,
		scanTimeout: scanTimeout,
		stopChan:    make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		tm.wg.Add(1)
		go tm.worker()
	}
	tm.wg.Add(1)
	go tm.cleanupLoop()

	log.Printf("🚀 Task manager started with %d workers", maxWorkers)
	return tm
}

// SubmitTask queues a scan of url
func (tm *TaskManager) SubmitTask(url string) (*models.ScanTask, error) {
	if !models.DetectSite(url).Supported() {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSite, url)
	}

	task := models.NewScanTask(url)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Task %s submitted for %s", task.ID, url)
	default:
		task.Fail("Task queue is full")
		log.Printf("❌ Failed to submit task %s - queue full", task.ID)
	}

	return task, nil
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.ScanTask, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	if !exists {
		return nil, models.ErrTaskNotFound
	}
	return task, nil
}

// GetActiveTasks returns all queued or running tasks
func (tm *TaskManager) GetActiveTasks() []*models.ScanTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var active []*models.ScanTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			active = append(active, task)
		}
	}
	return active
}

// CleanupOldTasks removes finished tasks older than maxAge
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) int {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && !task.CreatedAt.After(cutoff) {
			delete(tm.tasks, taskID)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("🧹 Cleaned up %d old tasks", removed)
	}
	return removed
}

func (tm *TaskManager) cleanupLoop() {
	defer tm.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tm.CleanupOldTasks(taskRetention)
		case <-tm.stopChan:
			return
		}
	}
}

func (tm *TaskManager) worker() {
	defer tm.wg.Done()
	for {
		select {
		case task := <-tm.taskQueue:
			tm.process(task)
		case <-tm.stopChan:
			return
		}
	}
}

// process runs a single task
func (tm *TaskManager) process(task *models.ScanTask) {
	tm.busyWorkers.Add(1)
	defer tm.busyWorkers.Add(-1)

	log.Printf("👷 Worker started processing task %s for %s", task.ID, task.URL)
	task.Start()

	ctx, cancel := context.WithTimeout(context.Background(), tm.scanTimeout)
	defer cancel()

	result, err := tm.scanner.ScanURL(ctx, task.URL)
	if err != nil {
		task.Fail("Scan failed: " + err.Error())
		log.Printf("❌ Task %s failed: %v", task.ID, err)
		return
	}

	task.Complete(result)
	log.Printf("✅ Task %s completed with %d items in %v", task.ID, result.Count, task.Duration())
}

// Stop stops the workers and waits for running scans to finish
func (tm *TaskManager) Stop() {
	tm.stopOnce.Do(func() {
		if n := len(tm.GetActiveTasks()); n > 0 {
			log.Printf("🛑 Task manager stopping with %d unfinished tasks", n)
		} else {
			log.Println("🛑 Task manager stopping...")
		}
		close(tm.stopChan)
	})
	tm.wg.Wait()
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Snapshot().Status)]++
	}

	return map[string]interface{}{
		"total_tasks":     len(tm.tasks),
		"active_workers":  int(tm.busyWorkers.Load()),
		"max_workers":     tm.maxWorkers,
		"queue_size":      len(tm.taskQueue),
		"tasks_by_status": statusCounts,
	}
}
