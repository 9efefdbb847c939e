package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"slices"
	"sync"

	"github.com/mmcdole/tabstash/internal/domain"
)

// Launcher opens saved tabs in a browser and implements domain.TabHost for
// surfaces that do not live inside one. It only knows the views registered
// with AddView or opened through it, all in a single window.
type Launcher struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	logger  *slog.Logger
	start   func(*exec.Cmd) error

	mu      sync.Mutex
	views   []domain.View
	nextID  int
	current int // view hosting the calling surface, 0 for none
}

// NewLauncher creates a launcher using command, or the system default
// handler when command is empty
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		start:   (*exec.Cmd).Start,
		nextID:  1,
	}
}

// AddView registers a view, appended to the window. An active view takes
// focus from the previous one.
func (l *Launcher) AddView(title, url string, active, pinned bool) domain.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addLocked(title, url, active, pinned)
}

func (l *Launcher) addLocked(title, url string, active, pinned bool) domain.View {
	if active {
		for i := range l.views {
			l.views[i].Active = false
		}
	}
	v := domain.View{
		ID:     l.nextID,
		Index:  len(l.views),
		Title:  title,
		URL:    url,
		Pinned: pinned,
		Active: active,
	}
	l.nextID++
	l.views = append(l.views, v)
	return v
}

// SetCurrent marks the view with id as the one hosting the surface
func (l *Launcher) SetCurrent(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = id
}

// Open launches url in the browser. Replace navigates the current view
// when there is one; otherwise a new view is recorded at opts.Index.
func (l *Launcher) Open(ctx context.Context, url string, opts domain.OpenOptions) error {
	if err := l.launch(url); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if opts.Replace {
		if i := l.indexLocked(l.current); i >= 0 {
			l.views[i].URL = url
			return nil
		}
	}

	v := l.addLocked("", url, opts.Active, false)
	if opts.Index >= 0 && opts.Index < len(l.views)-1 {
		l.views = slices.Delete(l.views, len(l.views)-1, len(l.views))
		l.views = slices.Insert(l.views, opts.Index, v)
		l.reindexLocked()
	}
	return nil
}

// Close forgets the views. The launcher cannot close tabs in a browser it
// did not start, so this is logged only.
func (l *Launcher) Close(_ context.Context, ids ...int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.views = slices.DeleteFunc(l.views, func(v domain.View) bool {
		return slices.Contains(ids, v.ID)
	})
	l.reindexLocked()
	l.logger.Info("views saved, close them in the browser", "ids", ids)
	return nil
}

func (l *Launcher) Active(_ context.Context) (*domain.View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range l.views {
		if v.Active {
			return &v, nil
		}
	}
	return nil, nil
}

func (l *Launcher) Current(_ context.Context) (*domain.View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(l.current); i >= 0 {
		v := l.views[i]
		return &v, nil
	}
	return nil, nil
}

func (l *Launcher) View(_ context.Context, id int) (*domain.View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(id); i >= 0 {
		v := l.views[i]
		return &v, nil
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrViewNotFound, id)
}

// Query returns the known views; they all share the current window
func (l *Launcher) Query(_ context.Context, q domain.ViewQuery) ([]domain.View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.View
	for _, v := range l.views {
		if q.Pinned != nil && v.Pinned != *q.Pinned {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (l *Launcher) indexLocked(id int) int {
	if id == 0 {
		return -1
	}
	return slices.IndexFunc(l.views, func(v domain.View) bool { return v.ID == id })
}

func (l *Launcher) reindexLocked() {
	for i := range l.views {
		l.views[i].Index = i
	}
}

// launch opens url in the configured browser, falling back to the system
// default handler
func (l *Launcher) launch(url string) error {
	if l.command != "" {
		args := append(slices.Clone(l.args), url)
		l.logger.Info("launching browser", "command", l.command, "args", args)

		cmd := exec.Command(l.command, args...)
		if runtime.GOOS == "darwin" {
			if _, err := exec.LookPath(l.command); err != nil {
				// GUI apps outside PATH open through "open -a"
				openArgs := []string{"-a", l.command}
				if len(l.args) > 0 {
					openArgs = append(openArgs, "--args")
					openArgs = append(openArgs, l.args...)
				}
				cmd = exec.Command("open", append(openArgs, url)...)
			}
		}
		if err := l.start(cmd); err != nil {
			return fmt.Errorf("launch %s: %w", l.command, err)
		}
		return nil
	}
	return l.launchDefault(url)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		// Linux and other Unix-like systems
		cmd = exec.Command("xdg-open", url)
	}

	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("launch system browser: %w", err)
	}
	return nil
}

var _ domain.TabHost = (*Launcher)(nil)
