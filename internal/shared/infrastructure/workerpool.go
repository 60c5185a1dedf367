package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolStopped est retourné par Submit après Stop ou Wait
var ErrPoolStopped = errors.New("worker pool is stopped")

// Task représente une tâche à exécuter; ctx est annulé quand le pool s'arrête
type Task func(ctx context.Context) error

// WorkerPool gère un pool de workers pour traiter des tâches en parallèle.
// Toutes les erreurs des tâches sont conservées et retournées par Wait.
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	state  sync.RWMutex
	closed bool

	errMu sync.Mutex
	errs  []error
}

// NewWorkerPool crée un nouveau pool de workers rattaché au contexte parent
func NewWorkerPool(parent context.Context, workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}
			if err := wp.run(task); err != nil {
				wp.errMu.Lock()
				wp.errs = append(wp.errs, err)
				wp.errMu.Unlock()
			}
		}
	}
}

// run exécute une tâche en convertissant une panique en erreur
func (wp *WorkerPool) run(task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task(wp.ctx)
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit soumet une tâche au pool
func (wp *WorkerPool) Submit(task Task) error {
	wp.state.RLock()
	defer wp.state.RUnlock()
	if wp.closed || wp.ctx.Err() != nil {
		return ErrPoolStopped
	}

	select {
	case <-wp.ctx.Done():
		return ErrPoolStopped
	case wp.tasks <- task:
		return nil
	}
}

// Wait ferme le canal de tâches, attend la fin des workers et retourne les erreurs jointes
func (wp *WorkerPool) Wait() error {
	wp.state.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.tasks)
	}
	wp.state.Unlock()

	wp.wg.Wait()
	ctxErr := wp.ctx.Err()
	wp.cancel()

	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	errs := append([]error(nil), wp.errs...)
	if ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	return errors.Join(errs...)
}

// Stop arrête le pool immédiatement; les tâches en attente sont abandonnées
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
}

// RunAll exécute les tâches sur un pool éphémère et retourne leurs erreurs jointes
func RunAll(ctx context.Context, workerCount int, tasks ...Task) error {
	wp := NewWorkerPool(ctx, workerCount)
	wp.Start()
	for _, task := range tasks {
		if err := wp.Submit(task); err != nil {
			return errors.Join(err, wp.Wait())
		}
	}
	return wp.Wait()
}
