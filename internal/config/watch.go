package config

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind tells a Watcher consumer what changed.
type ChangeKind int

const (
	ConfigChanged ChangeKind = iota
	AssetsChanged
)

// Change is one debounced filesystem event.
type Change struct {
	Kind ChangeKind
	Path string
}

// Watcher reports edits to the config file and new or changed template images.
type Watcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	assetsDir  string
	Events     chan Change
	Errors     chan error
	closeCh    chan struct{}
	once       sync.Once
}

// NewWatcher watches the directory holding configPath and every directory
// under assetsDir. Either argument may be empty.
func NewWatcher(configPath, assetsDir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	var dirs []string
	if configPath != "" {
		configPath, _ = filepath.Abs(configPath)
		dirs = append(dirs, filepath.Dir(configPath))
	}
	if assetsDir != "" {
		assetsDir, _ = filepath.Abs(assetsDir)
		_ = filepath.WalkDir(assetsDir, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				dirs = append(dirs, path)
			}
			return nil
		})
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:    w,
		configPath: configPath,
		assetsDir:  assetsDir,
		Events:     make(chan Change, 16),
		Errors:     make(chan error, 1),
		closeCh:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and closes both channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			kind, ok := w.classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- Change{Kind: kind, Path: event.Name}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) classify(path string) (ChangeKind, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, false
	}
	if w.configPath != "" && abs == w.configPath {
		return ConfigChanged, true
	}
	if w.assetsDir != "" && strings.HasPrefix(abs, w.assetsDir) && IsTemplateFile(abs) {
		return AssetsChanged, true
	}
	return 0, false
}

// IsTemplateFile reports whether path has a template image extension.
func IsTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return true
	}
	return false
}
