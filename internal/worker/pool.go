package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/matda59/video-to-mp3-converter/internal/media"
	"github.com/matda59/video-to-mp3-converter/internal/status"
	"github.com/matda59/video-to-mp3-converter/internal/storage"
)

// Job is one queued conversion.
type Job struct {
	TaskID     int64
	InputPath  string
	OutputPath string
}

// Transcoder abstracts the external media toolchain.
type Transcoder interface {
	ProbeDuration(ctx context.Context, input string) (float64, error)
	ConvertToMP3(ctx context.Context, input, output string, durationSeconds float64, onProgress func(media.Progress)) error
}

// ErrQueueFull is returned by Enqueue when the job queue is saturated.
var ErrQueueFull = errors.New("worker: conversion queue is full")

// Pool runs conversions on a fixed number of goroutines fed by a buffered
// queue, so the number of concurrent ffmpeg children is bounded. The upload
// handler enqueues and returns immediately; clients poll the status endpoint.
type Pool struct {
	transcoder Transcoder
	history    *storage.HistoryRepository
	tracker    *status.Tracker
	log        zerolog.Logger

	jobs    chan Job
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a pool of the given size over a queue of queueSize slots.
func NewPool(workers, queueSize int, transcoder Transcoder, history *storage.HistoryRepository, tracker *status.Tracker, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		transcoder: transcoder,
		history:    history,
		tracker:    tracker,
		log:        log,
		jobs:       make(chan Job, queueSize),
		workers:    workers,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					p.convert(ctx, job)
				}
			}
		}()
	}
	p.log.Info().Int("workers", p.workers).Int("queue_size", cap(p.jobs)).Msg("worker pool started")
}

// Stop closes the queue, lets the workers drain it and waits for in-flight
// conversions to finish. Enqueue must not be called after Stop.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	p.log.Info().Msg("worker pool stopped")
}

// Enqueue submits a job without blocking. Returns ErrQueueFull when every
// slot is taken; the caller decides how to finalize the job in that case.
func (p *Pool) Enqueue(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}
