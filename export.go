package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"frameup/internal/editor"
	"frameup/internal/export"
	"frameup/internal/logging"
)

// startExport runs an export job in the background. Results stream back to
// Update as exportProgressMsg and finish with exportDoneMsg.
func (m *model) startExport(all bool) tea.Cmd {
	if m.exporting {
		m.errorMessage = "an export is already running"
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tea.Msg, 1)
	progress := func(r export.Result) {
		select {
		case updates <- exportProgressMsg{result: r}:
		case <-ctx.Done():
		}
	}

	var (
		job   editor.ExportJob
		err   error
		total = 1
	)
	if all {
		job, err = m.session.ExportAll(m.pipeline, progress)
		total = len(m.session.Layout().Frames)
	} else {
		job, err = m.session.ExportFrame(m.pipeline, m.previewFrameID())
	}
	if err != nil {
		cancel()
		m.report(err)
		return nil
	}

	m.exporting = true
	m.cancelExport = cancel
	m.exportUpdates = updates
	m.exportTotal = total
	m.exportDone = 0
	m.successMessage = ""
	m.logger.Info("export started", "frames", total, "dir", m.config.ExportDir())

	go func() {
		results, err := job(ctx)
		updates <- exportDoneMsg{results: results, err: err}
		close(updates)
	}()
	return waitForExport(updates)
}

func waitForExport(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *model) finishExport(msg exportDoneMsg) {
	if m.cancelExport != nil {
		m.cancelExport()
	}
	m.exporting = false
	m.cancelExport = nil
	m.exportUpdates = nil

	var ok int
	var size int64
	for _, r := range msg.results {
		if r.OK() {
			ok++
			size += int64(r.Bytes)
			m.lastExport = r.Location
		}
	}
	switch {
	case errors.Is(msg.err, context.Canceled):
		m.errorMessage = fmt.Sprintf("export cancelled after %d of %d frames", ok, m.exportTotal)
	case msg.err != nil:
		m.errorMessage = fmt.Sprintf("exported %d of %d frames: %v", ok, m.exportTotal, msg.err)
	default:
		m.successMessage = fmt.Sprintf("Exported %d frame(s), %s, to %s", ok, humanize.Bytes(uint64(size)), m.config.ExportDir())
	}
	m.logger.Info("export finished", "ok", ok, "total", m.exportTotal, "bytes", size, "error", msg.err)
}

// copyExportLocation puts the last exported file, or the export directory
// when nothing was exported yet, on the clipboard.
func (m *model) copyExportLocation() {
	loc := m.lastExport
	if loc == "" {
		loc = m.config.ExportDir()
	}
	if err := writeClipboard(loc); err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	m.successMessage = "Copied " + loc
}

// runExport is the headless "frameup export" command: it renders every
// visible frame of the stored document for one image and writes the PNGs.
func runExport(args []string) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	configPath := flags.String("config", defaultConfigPath(), "path to the config file")
	layersPath := flags.String("layers", "", "YAML or JSON file with text layers and an optional transform")
	outDir := flags.String("out", "", "output directory (default: save_directory or the working directory)")
	frameID := flags.String("frame", "", "export only the frame with this id")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: frameup export [flags] IMAGE")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("export needs exactly one image")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *outDir != "" {
		if cfg.SaveDirectory, err = absPath(*outDir); err != nil {
			return err
		}
	}
	cfg.Logging.File = ""
	cfg.Logging.Console = true

	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	doc, err := d.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	session := editor.New(doc, cfg.ReferenceSize, logger)
	if err := session.LoadImage(flags.Arg(0)); err != nil {
		return err
	}
	if *layersPath != "" {
		job, err := readJobFile(*layersPath)
		if err != nil {
			return err
		}
		if err := job.apply(session); err != nil {
			return fmt.Errorf("applying %s: %w", *layersPath, err)
		}
	}

	out := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer out.Flush()

	var run editor.ExportJob
	if *frameID != "" {
		run, err = session.ExportFrame(d.pipeline, *frameID)
	} else {
		run, err = session.ExportAll(d.pipeline, func(r export.Result) { printResult(out, r) })
	}
	if err != nil {
		return err
	}
	results, err := run(ctx)
	if *frameID != "" {
		for _, r := range results {
			printResult(out, r)
		}
	}
	return err
}

func printResult(w io.Writer, r export.Result) {
	if !r.OK() {
		fmt.Fprintf(w, "%s\tfailed\t\t%v\n", r.FrameID, r.Err)
		return
	}
	fmt.Fprintf(w, "%s\t%d×%d\t%s\t%s\n", r.FrameID, r.Width, r.Height, humanize.Bytes(uint64(r.Bytes)), r.Location)
}
