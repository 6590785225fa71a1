package output

import "github.com/unkn0wn-root/playterm/internal/errdef"

func (s *Store) Focus() Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// SetFocus shows the pane for kind, or hides output when kind is KindNone.
func (s *Store) SetFocus(kind Kind) error {
	if kind != KindNone && !kind.Focusable() {
		return errdef.New(errdef.CodeUI, "%q has no output pane", kind)
	}
	s.mu.Lock()
	s.focus = kind
	s.mu.Unlock()
	return nil
}

// Close hides the output pane. Stored results are kept.
func (s *Store) Close() {
	s.mu.Lock()
	s.focus = KindNone
	s.mu.Unlock()
}

// Tabs lists the focusable kinds that have a tab, in display order: kinds
// with something to show, kinds waiting on a dispatch, and the focused kind.
func (s *Store) Tabs() []Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tabs []Kind
	for _, kind := range focusable {
		sl, ok := s.slots[kind]
		if !ok {
			continue
		}
		if kind != s.focus && sl.result.State != StatePending && sl.result.IsEmpty() {
			continue
		}
		tabs = append(tabs, kind)
	}
	return tabs
}

// CycleFocus moves focus to the next (or previous) available tab. With no
// focus it opens the first or last tab. It returns the new focus.
func (s *Store) CycleFocus(forward bool) Kind {
	tabs := s.Tabs()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tabs) == 0 {
		return s.focus
	}
	idx := -1
	for i, kind := range tabs {
		if kind == s.focus {
			idx = i
			break
		}
	}
	switch {
	case idx == -1 && forward:
		idx = 0
	case idx == -1:
		idx = len(tabs) - 1
	case forward:
		idx = (idx + 1) % len(tabs)
	default:
		idx = (idx - 1 + len(tabs)) % len(tabs)
	}
	s.focus = tabs[idx]
	return s.focus
}
