// Command webdisplay runs the display web mirror: a console renderer
// wrapped by the mirroring bridge, served to browsers over HTTP/WebSocket.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Thempra/xiaozhi-esp32/internal/bridge"
	"github.com/Thempra/xiaozhi-esp32/internal/config"
	"github.com/Thempra/xiaozhi-esp32/internal/display"
	"github.com/Thempra/xiaozhi-esp32/internal/logger"
	"github.com/Thempra/xiaozhi-esp32/internal/status"
	"github.com/Thempra/xiaozhi-esp32/internal/webdisplay"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "webdisplay: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "webdisplay: %v\n", err)
		os.Exit(1)
	}

	theme := display.DarkTheme
	if cfg.Theme == "light" {
		theme = display.LightTheme
	}
	console := display.NewConsole(os.Stdout, theme)

	store := bridge.NewStateStore(status.NewHost())
	hub := webdisplay.NewHub(cfg.MaxClients)
	mirror := bridge.New(console, store, hub)

	// Everything past this point drives the display through the bridge,
	// unaware that mirroring is attached.
	var ui display.Display = mirror

	srv := webdisplay.NewServer(cfg, hub, mirror.FullStateJSON)
	mirroring := true
	if err := srv.Start(); err != nil {
		// The device keeps running without remote viewers.
		logger.Warn("Mirroring disabled: %v", err)
		mirroring = false
	}

	if err := ui.SetupUI(); err != nil {
		logger.Error("SetupUI failed: %v", err)
	}

	stop := make(chan struct{})
	go statusBarLoop(ui, cfg.StatusInterval, stop)
	if cfg.Demo {
		go demoLoop(ui, stop)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("Shutting down")

	close(stop)
	if mirroring {
		if err := srv.Stop(); err != nil {
			logger.Error("Shutdown error: %v", err)
		}
	}
}

// statusBarLoop refreshes the status bar readouts the way the device
// firmware does on its UI timer.
func statusBarLoop(ui display.Display, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := ui.UpdateStatusBar(true); err != nil {
				logger.Error("UpdateStatusBar failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

// demoLoop exercises every display mutation on a fixed script so the
// mirror can be watched without the voice-assistant stack.
func demoLoop(ui display.Display, stop <-chan struct{}) {
	type step struct {
		delay time.Duration
		run   func() error
	}
	script := []step{
		{2 * time.Second, func() error { return ui.SetStatus("Listening") }},
		{time.Second, func() error { return ui.SetEmotion("thinking") }},
		{2 * time.Second, func() error { return ui.SetChatMessage("user", "What's the weather like?") }},
		{time.Second, func() error { return ui.SetStatus("Speaking") }},
		{time.Second, func() error { return ui.SetEmotion("happy") }},
		{2 * time.Second, func() error { return ui.SetChatMessage("assistant", "Sunny, 23°C. A good day to be outside!") }},
		{2 * time.Second, func() error { return ui.ShowNotification("Volume set to 80%", 3*time.Second) }},
		{3 * time.Second, func() error { return ui.SetStatus("Idle") }},
		{time.Second, func() error { return ui.SetEmotion("neutral") }},
		{10 * time.Second, func() error { return ui.ClearChatMessages() }},
	}

	for {
		for _, s := range script {
			select {
			case <-time.After(s.delay):
			case <-stop:
				return
			}
			if err := s.run(); err != nil {
				logger.Error("Demo step failed: %v", err)
			}
		}
	}
}
