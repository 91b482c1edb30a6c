package main

import (
	"embed"
	"errors"
	"flag"
	"log/slog"
	"os"

	"ride/internal/ipc"
	"ride/internal/singleinstance"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	viewLog := flag.Bool("view-log", false, "open the RIDE Log tab")
	flag.Parse()

	setConsoleUTF8()

	lock, err := singleinstance.TryLock(singleinstance.DefaultLockName())
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		if err := forwardToRunningInstance(*viewLog); err != nil {
			slog.Warn("[DEBUG-SINGLE] failed to signal existing instance", "error", err)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		slog.Warn("[DEBUG-SINGLE] lock failed, proceeding without single-instance guard", "error", err)
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			slog.Warn("[DEBUG-SINGLE] lock release failed", "error", releaseErr)
		}
	}()

	app := NewApp()
	app.openLogOnStartup = *viewLog

	err = wails.Run(&options.App{
		Title:     "RIDE",
		Width:     1280,
		Height:    800,
		MinWidth:  640,
		MinHeight: 400,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []any{
			app,
		},
	})
	if err != nil {
		slog.Error("[app] wails run failed", "error", err)
		os.Exit(1)
	}
}

// forwardToRunningInstance asks the instance holding the lock to come to
// the front, and to open its log when viewLog is set.
func forwardToRunningInstance(viewLog bool) error {
	cmd := ipc.CommandActivate
	if viewLog {
		cmd = ipc.CommandViewLog
	}
	slog.Info("[DEBUG-SINGLE] another instance is already running, forwarding request", "command", cmd)
	_, err := ipc.Send("", ipc.Request{Command: cmd})
	return err
}
