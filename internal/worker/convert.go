package worker

import (
	"context"
	"errors"
	"os/exec"

	"github.com/matda59/video-to-mp3-converter/internal/media"
	"github.com/matda59/video-to-mp3-converter/internal/models"
)

// convert owns one job end to end: probe the input duration, run the
// transcoder while publishing live progress, then write the terminal state to
// both the tracker and the history. Terminal writes happen exactly once.
func (p *Pool) convert(ctx context.Context, job Job) {
	log := p.log.With().Int64("task_id", job.TaskID).Logger()

	duration, err := p.transcoder.ProbeDuration(ctx, job.InputPath)
	if err != nil {
		// Unknown duration pins progress at 0; the transcode can still succeed.
		log.Warn().Err(err).Str("input", job.InputPath).Msg("duration probe failed, progress disabled")
		duration = 0
	}

	err = p.transcoder.ConvertToMP3(ctx, job.InputPath, job.OutputPath, duration, func(prog media.Progress) {
		p.tracker.Set(job.TaskID, models.LiveStatus{
			Status:   models.StatusInProgress,
			Progress: prog.Percent,
			Speed:    prog.Speed,
			Elapsed:  prog.Elapsed,
		})
	})

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		p.finalize(job.TaskID, models.LiveStatus{
			Status:   models.StatusCompleted,
			Progress: 100,
			Speed:    models.SpeedUnknown,
			Elapsed:  duration,
		})
		log.Info().Str("output", job.OutputPath).Msg("conversion completed")
	case errors.As(err, &exitErr):
		p.finalize(job.TaskID, models.LiveStatus{
			Status: models.StatusFailed,
			Speed:  models.SpeedUnknown,
		})
		log.Error().Err(err).Str("input", job.InputPath).Msg("transcoder rejected input")
	default:
		p.finalize(job.TaskID, models.LiveStatus{
			Status: models.StatusError,
			Speed:  models.SpeedUnknown,
			Error:  err.Error(),
		})
		log.Error().Err(err).Msg("conversion error")
	}
}

// finalize publishes a terminal state to the tracker and persists it. The
// history write uses a fresh context so a canceled job still records its end.
func (p *Pool) finalize(taskID int64, terminal models.LiveStatus) {
	p.tracker.Set(taskID, terminal)
	updated, err := p.history.UpdateStatus(context.Background(), taskID, terminal.Status)
	if err != nil {
		p.log.Error().Err(err).Int64("task_id", taskID).Str("status", terminal.Status).Msg("failed to persist terminal status")
		return
	}
	if !updated {
		// The job was deleted while converting; a live entry for an id with
		// no history row must not stick around.
		p.tracker.Remove(taskID)
		p.log.Debug().Int64("task_id", taskID).Msg("job deleted during conversion")
	}
}
