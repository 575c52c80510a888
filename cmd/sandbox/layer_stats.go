package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/logger"
)

const statsInterval = time.Second

// StatsLayer shows frame timing and draw counts in the window title.
type StatsLayer struct {
	stage   stage
	title   string
	backend string

	frames int
	since  time.Time
}

func (l *StatsLayer) OnAttach(e *core.Engine) {
	l.title = e.Config.Title
	l.backend = e.Config.Backend
	l.since = time.Now()
}

func (l *StatsLayer) OnDetach(e *core.Engine)             {}
func (l *StatsLayer) OnUpdate(e *core.Engine, dt float64) {}

func (l *StatsLayer) OnRender(e *core.Engine, alpha float64) {
	l.frames++
	elapsed := time.Since(l.since)
	if elapsed < statsInterval {
		return
	}
	ms := float64(elapsed.Microseconds()) / 1000 / float64(l.frames)
	st := l.stage.Stats()
	e.Window.SetTitle(fmt.Sprintf("%s [%s] %.2f ms (%.0f FPS) draws %d opaque %d transparent %d",
		l.title, l.backend, ms, 1000/ms, st.DrawCalls, st.Opaque, st.Transparent))
	logger.Log.Debug("frame stats",
		zap.Uint64("frame", e.Frame()),
		zap.Float64("frame_ms", ms),
		zap.Int("draw_calls", st.DrawCalls),
		zap.Int("skipped", st.Skipped))
	l.frames = 0
	l.since = time.Now()
}

func (l *StatsLayer) OnEvent(e *core.Engine, ev core.Event) bool { return false }
