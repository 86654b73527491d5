package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"frameup/internal/store"
)

const storeTimeout = 5 * time.Second

// persist saves the document after frames or styles change.
func (m *model) persist() tea.Cmd {
	rev := m.session.ConfigRevision()
	if rev == m.savedConfigRev {
		return nil
	}
	m.savedConfigRev = rev
	return saveCmd(m.store, m.session.Document())
}

func saveCmd(s *store.Store, doc store.Document) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return savedMsg{err: s.Save(ctx, doc)}
	}
}

// waitForStoreChange blocks until the document file changes on disk.
func waitForStoreChange(w *store.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Events(); !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func reloadCmd(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		doc, changed, err := s.Reload(ctx)
		return storeReloadedMsg{doc: doc, changed: changed, err: err}
	}
}
