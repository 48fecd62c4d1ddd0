package tetraview

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solarlune/tetra3d"
	"github.com/solarlune/tetraview/colors"
)

// ErrNoModel is reported when a loader claims success but hands back no model.
var ErrNoModel = errors.New("loader returned no model")

// LoadState is the state of the model load. It starts out LoadPending and changes exactly once, to either LoadSucceeded
// or LoadFailed.
type LoadState int

const (
	LoadPending   LoadState = iota // The load is still running.
	LoadSucceeded                  // The model was loaded and added to the scene.
	LoadFailed                     // The model couldn't be loaded.
)

func (s LoadState) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadSucceeded:
		return "succeeded"
	case LoadFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal returns whether the state is final.
func (s LoadState) Terminal() bool {
	return s == LoadSucceeded || s == LoadFailed
}

// LoadOutcome records the outcome of the model load, allowing exactly one transition out of LoadPending.
type LoadOutcome struct {
	state LoadState
}

// State returns the current state.
func (o *LoadOutcome) State() LoadState {
	return o.state
}

// resolve moves the outcome into the terminal state given, returning true. If the outcome was already terminal, nothing
// changes and false is returned.
func (o *LoadOutcome) resolve(state LoadState) bool {
	if o.state.Terminal() || !state.Terminal() {
		return false
	}
	o.state = state
	return true
}

// LoadEventKind is the kind of a LoadEvent.
type LoadEventKind int

const (
	LoadProgress LoadEventKind = iota
	LoadSuccess
	LoadFailure
)

// LoadEvent is a single notification from a running load.
type LoadEvent struct {
	Kind LoadEventKind

	Loaded, Total int64 // Bytes read so far and the expected total; set for LoadProgress.

	Model tetra3d.INode // The loaded model's root node; set for LoadSuccess.
	Err   error         // The reason the load failed; set for LoadFailure.
}

// AssetLoader loads a model from a path. It should call progress as data is read; loaded and total are byte counts, and
// total may be <= 0 if it's unknown. progress may be called from whatever goroutine Load runs on.
type AssetLoader interface {
	Load(ctx context.Context, path string, progress func(loaded, total int64)) (tetra3d.INode, error)
}

// AssetLoaderFunc adapts a function to the AssetLoader interface.
type AssetLoaderFunc func(ctx context.Context, path string, progress func(loaded, total int64)) (tetra3d.INode, error)

func (f AssetLoaderFunc) Load(ctx context.Context, path string, progress func(loaded, total int64)) (tetra3d.INode, error) {
	return f(ctx, path, progress)
}

// loadEventBuffer is how many progress events can queue up before newer ones are dropped.
const loadEventBuffer = 16

// StartLoad starts loading the model at path on its own goroutine and returns the channel its events arrive on. Any number
// of LoadProgress events are sent, followed by exactly one LoadSuccess or LoadFailure event, after which the channel is
// closed. Progress events are dropped rather than blocking the load if the receiver falls behind; the final event is
// always delivered unless ctx is cancelled first.
func StartLoad(ctx context.Context, loader AssetLoader, path string) <-chan LoadEvent {

	events := make(chan LoadEvent, loadEventBuffer)

	go func() {

		defer close(events)

		model, err := loader.Load(ctx, path, func(loaded, total int64) {
			select {
			case events <- LoadEvent{Kind: LoadProgress, Loaded: loaded, Total: total}:
			default:
			}
		})

		final := LoadEvent{Kind: LoadSuccess, Model: model}
		if err == nil && model == nil {
			err = ErrNoModel
		}
		if err != nil {
			final = LoadEvent{Kind: LoadFailure, Err: err}
		}

		select {
		case events <- final:
		case <-ctx.Done():
		}

	}()

	return events

}

// AssetLoad applies load events to the viewer: progress updates the ProgressIndicator, success adds the model to the
// scene, and failure shows an error message. Once the load has succeeded or failed, any further events are ignored.
type AssetLoad struct {
	Outcome  LoadOutcome
	Viewport *Viewport
	Progress *ProgressIndicator

	Scale  Vec3 // Local scale given to the model once loaded.
	Offset Vec3 // Local position given to the model once loaded.

	LoadingText string
	ErrorText   string

	Logger *slog.Logger

	// Model is the loaded model's root node, once the load succeeds.
	Model tetra3d.INode
	// Err is the reason the load failed, if it did.
	Err error

	started time.Time
	loaded  int64
}

// NewAssetLoad creates an AssetLoad for the given viewport and progress indicator, taking the model transform and label
// strings from the Config.
func NewAssetLoad(cfg Config, vp *Viewport, progress *ProgressIndicator, logger *slog.Logger) *AssetLoad {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetLoad{
		Viewport:    vp,
		Progress:    progress,
		Scale:       cfg.ModelScale,
		Offset:      cfg.ModelOffset,
		LoadingText: cfg.LoadingText,
		ErrorText:   cfg.ErrorText,
		Logger:      logger,
		started:     time.Now(),
	}
}

// State returns the load's current state.
func (al *AssetLoad) State() LoadState {
	return al.Outcome.State()
}

// Handle dispatches a LoadEvent to OnProgress, OnSuccess, or OnFailure.
func (al *AssetLoad) Handle(event LoadEvent) {
	switch event.Kind {
	case LoadProgress:
		al.OnProgress(event.Loaded, event.Total)
	case LoadSuccess:
		al.OnSuccess(event.Model)
	case LoadFailure:
		al.OnFailure(event.Err)
	}
}

// OnProgress sets the indicator's value to the percentage loaded. The label only ever reads LoadingText: byte counts
// for external buffers aren't part of the total, so the percentage isn't trustworthy enough to print.
func (al *AssetLoad) OnProgress(loaded, total int64) {

	if al.Outcome.State().Terminal() {
		return
	}

	al.loaded = loaded

	if percent, ok := Percent(loaded, total); ok {
		al.Progress.SetValue(percent)
	}

	al.Progress.SetLabel(al.LoadingText)

}

// OnSuccess scales and positions the model, adds it to the scene root, hides the progress indicator, and renders a frame.
func (al *AssetLoad) OnSuccess(model tetra3d.INode) {

	if model == nil {
		al.OnFailure(ErrNoModel)
		return
	}

	if !al.Outcome.resolve(LoadSucceeded) {
		return
	}

	al.Model = model

	model.SetLocalScaleVec(al.Scale.vector())
	model.SetLocalPositionVec(al.Offset.vector())
	al.Viewport.Scene.Root.AddChildren(model)

	al.Progress.Hide()

	al.Viewport.Render()

	al.Logger.Info("model loaded", "model", model.Name(), "bytes", al.loaded, "took", time.Since(al.started).Round(time.Millisecond))

}

// OnFailure shows ErrorText on the label, in red. The indicator stays visible and nothing is retried.
func (al *AssetLoad) OnFailure(err error) {

	if !al.Outcome.resolve(LoadFailed) {
		return
	}

	al.Err = err
	al.Progress.SetLabel(al.ErrorText)
	al.Progress.LabelColor = colors.PaleRed()

	al.Logger.Error("model failed to load", "err", err)

}
