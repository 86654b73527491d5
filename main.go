package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"frameup/internal/compositor"
	"frameup/internal/editor"
	"frameup/internal/export"
	"frameup/internal/fonts"
	"frameup/internal/interact"
	"frameup/internal/logging"
	"frameup/internal/store"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "export":
			if err := runExport(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("frameup", flag.ContinueOnError)
	configPath := flags.String("config", defaultConfigPath(), "path to the config file")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: frameup [--config FILE] [IMAGE]")
		fmt.Fprintln(flags.Output(), "       frameup export [flags] IMAGE")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("frameup needs a terminal; use 'frameup export' to render without one")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	ctx := context.Background()
	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	doc, err := d.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	m := newModel(cfg, logger, d, doc)
	if flags.NArg() > 0 {
		m.initialImage = flags.Arg(0)
	}
	if cfg.Store.Backend == "file" {
		w, err := store.NewWatcher(cfg.Store.Path, logger)
		if err != nil {
			logger.Warn("document changes from other programs will not be picked up", "error", err)
		} else {
			defer w.Close()
			m.watcher = w
		}
	}

	logger.Info("starting", "store", cfg.Store.Backend, "path", cfg.Store.Path, "exports", cfg.ExportDir())
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	final, err := p.Run()
	if fm, ok := final.(model); ok && fm.cancelExport != nil {
		fm.cancelExport()
	}
	return err
}

// deps are the long-lived services shared by the TUI and headless export.
type deps struct {
	store    *store.Store
	fonts    *fonts.Registry
	comp     *compositor.Compositor
	pipeline *export.Pipeline
}

func openDeps(ctx context.Context, cfg *Config, logger *slog.Logger) (*deps, error) {
	backend, err := openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	reg, err := fonts.NewRegistry(cfg.FontDir, logger)
	if err != nil {
		backend.Close() //nolint:errcheck
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	comp := compositor.New(reg, cfg.ReferenceSize)
	return &deps{
		store:    store.New(backend, logger),
		fonts:    reg,
		comp:     comp,
		pipeline: export.New(comp, export.DirSink{Dir: cfg.ExportDir()}, cfg.ExportDelay, logger),
	}, nil
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		slog.Error("closing store", "error", err)
	}
}

func openBackend(ctx context.Context, cfg StoreConfig, logger *slog.Logger) (store.Backend, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	switch cfg.Backend {
	case "sqlite":
		b, err := store.OpenSQLite(ctx, cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return b, nil
	default:
		return store.FileBackend{Path: cfg.Path}, nil
	}
}

func newModel(cfg *Config, logger *slog.Logger, d *deps, doc store.Document) model {
	session := editor.New(doc, cfg.ReferenceSize, logger)
	return model{
		mode:              ModeStartup,
		config:            cfg,
		logger:            logger,
		session:           session,
		fonts:             d.fonts,
		comp:              d.comp,
		pipeline:          d.pipeline,
		store:             d.store,
		savedConfigRev:    session.ConfigRevision(),
		editorCache:       &canvasCache{},
		previewCache:      &canvasCache{},
		selectedFileIndex: -1,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForStoreChange(m.watcher)}
	if m.initialImage != "" {
		cmds = append(cmds, decodeImageCmd(m.initialImage))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if save := m.persist(); save != nil {
		if cmd == nil {
			return m, save
		}
		cmd = tea.Batch(cmd, save)
	}
	return m, cmd
}

func (m *model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil

	case imageDecodedMsg:
		if msg.err != nil {
			m.logger.Warn("image load failed", "path", msg.info.Path, "error", msg.err)
			m.errorMessage = msg.err.Error()
			return nil
		}
		m.session.SetImage(msg.img, msg.info)
		m.gesture = nil
		m.selectedLayer = 0
		if m.mode == ModeStartup || m.mode == ModeFileInput {
			m.mode = ModeNormal
		}
		m.successMessage = fmt.Sprintf("Loaded %s", msg.info.Name)
		m.errorMessage = ""
		return nil

	case exportProgressMsg:
		m.exportDone++
		if msg.result.OK() {
			m.lastExport = msg.result.Location
		}
		return waitForExport(m.exportUpdates)

	case exportDoneMsg:
		m.finishExport(msg)
		return nil

	case storeChangedMsg:
		return tea.Batch(reloadCmd(m.store), waitForStoreChange(m.watcher))

	case storeReloadedMsg:
		if msg.err != nil {
			m.logger.Error("reloading document", "error", msg.err)
			m.errorMessage = "reload failed: " + msg.err.Error()
			return nil
		}
		if msg.changed {
			m.session.ReplaceDocument(msg.doc)
			m.savedConfigRev = m.session.ConfigRevision()
			m.clampSelections()
			m.successMessage = "Frames and styles reloaded"
		}
		return nil

	case savedMsg:
		if msg.err != nil {
			m.logger.Error("saving document", "error", msg.err)
			m.errorMessage = "save failed: " + msg.err.Error()
		}
		return nil
	}
	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	if m.help && m.mode != ModeStartup {
		m.handleHelpKey(key)
		return nil
	}

	if m.session.PointerState() != interact.Idle && key == "esc" {
		m.session.PointerCancel()
		m.gesture = nil
		return nil
	}

	// A dropped file arrives as a bracketed paste of its path.
	if msg.Paste && (m.mode == ModeStartup || m.mode == ModeNormal) {
		return m.openPath(cleanPastedPath(string(msg.Runes)))
	}

	switch m.mode {
	case ModeStartup:
		return m.handleStartupKey(key)
	case ModeNormal:
		return m.handleNormalKey(msg)
	case ModeTextInput, ModeEditing:
		return m.handleTextKey(msg)
	case ModeFileInput:
		return m.handleFileKey(msg)
	case ModePrompt:
		return m.handlePromptKey(msg)
	case ModeFrames:
		return m.handleFramesKey(key)
	case ModeStyles:
		return m.handleStylesKey(key)
	case ModeConfirm:
		return m.handleConfirmKey(key)
	}
	return nil
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "j", "down":
		visible := max(1, m.height-statusRows)
		if m.helpScroll < max(0, len(helpLines)-visible) {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
}

func (m *model) handleStartupKey(key string) tea.Cmd {
	m.errorMessage = ""
	switch key {
	case "o":
		m.openPicker()
	case "v":
		return m.pasteImagePath()
	case "F":
		m.mode = ModeFrames
		m.clampSelections()
	case "?":
		m.help = true
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		m.handleNavigation(key)
	case "+", "=":
		m.session.ZoomBy(editor.ZoomStep)
	case "-", "_":
		m.session.ZoomBy(-editor.ZoomStep)
	case "r":
		m.session.Reset()
	case "c":
		m.report(m.session.Cover())
	case "x":
		m.session.CenterH()
	case "y":
		m.session.CenterV()

	case "o":
		m.openPicker()
	case "v":
		return m.pasteImagePath()
	case "n":
		return m.confirm(ConfirmNewImage)

	case "t":
		m.startNewLayer()
	case "e":
		m.startEditLayer()
	case "tab":
		m.cycleLayer(1)
	case "shift+tab":
		m.cycleLayer(-1)
	case "d":
		if _, ok := m.currentLayer(); ok {
			return m.confirm(ConfirmDeleteLayer)
		}
	case "a", "[", "]", "b", "i", "g", "w", "f":
		m.styleLayer(key)

	case "s":
		if _, ok := m.currentLayer(); !ok {
			m.errorMessage = "select a text layer first"
			return nil
		}
		m.startPrompt(PromptStyleName, "")
	case "S":
		m.mode = ModeStyles
		m.selectedStyle = min(m.selectedStyle, max(0, len(m.session.Styles())-1))

	case "F":
		m.mode = ModeFrames
		m.clampSelections()
	case "p":
		m.cyclePreview()

	case "E":
		if m.exporting {
			return m.confirm(ConfirmCancelExport)
		}
		return m.startExport(true)
	case "ctrl+e":
		return m.startExport(false)
	case "Y":
		m.copyExportLocation()

	case "esc":
		m.selectedLayer = 0
	case "?":
		m.help = true
	case "q":
		return m.confirm(ConfirmQuit)
	}
	return nil
}

func (m *model) handleConfirmKey(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		m.mode = m.confirmReturn
		return m.perform(m.confirmAction)
	case "n", "N", "esc":
		m.mode = m.confirmReturn
	}
	return nil
}

// confirm asks before running action, or runs it straight away when
// confirmations are off.
func (m *model) confirm(action ConfirmAction) tea.Cmd {
	if !m.config.Confirmations {
		return m.perform(action)
	}
	m.confirmAction = action
	m.confirmReturn = m.mode
	m.mode = ModeConfirm
	return nil
}

func (m *model) perform(action ConfirmAction) tea.Cmd {
	switch action {
	case ConfirmQuit:
		return m.quit()
	case ConfirmNewImage:
		m.session.Clear()
		m.selectedLayer = 0
		m.gesture = nil
		m.mode = ModeStartup
	case ConfirmDeleteLayer:
		if l, ok := m.currentLayer(); ok {
			m.report(m.session.DeleteLayer(l.ID))
			m.selectedLayer = 0
		}
	case ConfirmDeleteFrame:
		if f, ok := m.currentFrame(); ok {
			m.report(m.session.DeleteFrame(f.ID))
			m.clampSelections()
		}
	case ConfirmDeleteStyle:
		styles := m.session.Styles()
		if m.selectedStyle < len(styles) {
			m.report(m.session.DeleteStyle(styles[m.selectedStyle].ID))
			m.selectedStyle = max(0, min(m.selectedStyle, len(styles)-2))
		}
	case ConfirmCancelExport:
		if m.cancelExport != nil {
			m.cancelExport()
		}
	}
	return nil
}

func (m *model) quit() tea.Cmd {
	if m.cancelExport != nil {
		m.cancelExport()
	}
	return tea.Quit
}

// report shows err on the status line and logs it.
func (m *model) report(err error) {
	if err == nil {
		return
	}
	m.logger.Debug("command rejected", "error", err)
	m.errorMessage = err.Error()
}
