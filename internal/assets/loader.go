package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Callback receives a load result on the frame goroutine, from Poll.
type Callback func(*Model, error)

type completion struct {
	name  string
	model *Model
	err   error
	done  Callback
}

// Progress counts loads requested and delivered since the loader was created.
type Progress struct {
	Loaded int
	Total  int
}

// Fraction is Loaded/Total, or 1 when nothing was requested.
func (p Progress) Fraction() float32 {
	if p.Total == 0 {
		return 1
	}
	return float32(p.Loaded) / float32(p.Total)
}

func (p Progress) Complete() bool {
	return p.Loaded >= p.Total
}

// Loader reads model manifests (<name>.yaml) from a filesystem on worker goroutines.
// Results are queued and only handed to callbacks from Poll, so callers never see a
// completion outside the frame loop. Parsed models are cached by name.
type Loader struct {
	fsys fs.FS
	log  zerolog.Logger

	mu    sync.Mutex
	cache map[string]*Model
	queue []completion
	wg    sync.WaitGroup

	total     int
	delivered int
}

// NewLoader returns a loader over fsys.
func NewLoader(fsys fs.FS, log zerolog.Logger) *Loader {
	return &Loader{
		fsys:  fsys,
		log:   log.With().Str("component", "assets").Logger(),
		cache: make(map[string]*Model),
	}
}

// Load starts loading name in the background. done runs from a later Poll with the model or an error
// wrapping ErrModelNotFound when no manifest exists.
func (l *Loader) Load(name string, done Callback) {
	l.total++
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		m, err := l.read(name)
		l.mu.Lock()
		l.queue = append(l.queue, completion{name: name, model: m, err: err, done: done})
		l.mu.Unlock()
	}()
}

// Poll delivers queued completions on the calling goroutine, in completion order, and returns how many ran.
func (l *Loader) Poll() int {
	l.mu.Lock()
	ready := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, c := range ready {
		l.delivered++
		if c.err != nil {
			l.log.Error().Err(c.err).Str("model", c.name).Msg("load failed")
		} else {
			l.log.Debug().Str("model", c.name).Msg("loaded")
		}
		if c.done != nil {
			c.done(c.model, c.err)
		}
	}
	return len(ready)
}

// Wait blocks until every started load has been queued. Poll still has to run to deliver them.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Pending returns loads requested but not yet delivered by Poll.
func (l *Loader) Pending() int {
	return l.total - l.delivered
}

func (l *Loader) Progress() Progress {
	return Progress{Loaded: l.delivered, Total: l.total}
}

// Get loads name synchronously, bypassing the queue. Used at startup and by tools.
func (l *Loader) Get(name string) (*Model, error) {
	return l.read(name)
}

func (l *Loader) read(name string) (*Model, error) {
	l.mu.Lock()
	if m, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	data, err := fs.ReadFile(l.fsys, path.Clean(name)+".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
		return nil, fmt.Errorf("assets: read %s: %w", name, err)
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("assets: parse %s: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[name]; ok {
		return cached, nil
	}
	l.cache[name] = &m
	return &m, nil
}
