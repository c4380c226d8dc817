package backup

import (
	"errors"
	"fmt"
	"os"

	"github.com/minios-linux/kbdkit/worker"
)

// Hooks run after every restore, in field order, whether or not the
// restore succeeded. Nil hooks are skipped.
type Hooks struct {
	CheckVersionUpgrade func() error
	ReloadSubtypes      func() error
	NewDictionary       func() error
	RebuildSettings     func() error
	RefreshTheme        func() error
}

func (h Hooks) run() error {
	var errs []error
	for _, hook := range []struct {
		name string
		fn   func() error
	}{
		{"version upgrade", h.CheckVersionUpgrade},
		{"subtype reload", h.ReloadSubtypes},
		{"dictionary broadcast", h.NewDictionary},
		{"settings rebuild", h.RebuildSettings},
		{"theme refresh", h.RefreshTheme},
	} {
		if hook.fn == nil {
			continue
		}
		if err := hook.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		}
	}
	return errors.Join(errs...)
}

// Manager runs backups and restores on a worker and blocks the caller
// until they finish.
type Manager struct {
	exec  *worker.Executor
	data  Data
	hooks Hooks
}

// NewManager returns a Manager using exec for archive work.
func NewManager(exec *worker.Executor, data Data, hooks Hooks) *Manager {
	return &Manager{exec: exec, data: data, hooks: hooks}
}

// Backup writes the archive to path, creating or truncating it. On error
// the partial archive is left in place.
func (m *Manager) Backup(path string) error {
	return m.exec.Run(func() error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := Backup(f, m.data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// Restore restores the archive at path and then runs the hooks.
func (m *Manager) Restore(path string) (Report, error) {
	var rep Report
	err := m.exec.Run(func() error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		rep, err = Restore(f, info.Size(), m.data)
		return err
	})
	return rep, errors.Join(err, m.hooks.run())
}
