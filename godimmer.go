package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	c "lautenbacher.net/godimmer/config"
	"lautenbacher.net/godimmer/dimmer"
	"lautenbacher.net/godimmer/hal"
	"lautenbacher.net/godimmer/logging"
	p "lautenbacher.net/godimmer/platform"
)

var errInterrupted = errors.New("interrupted")

// session is one power cycle of the dimmer: a started platform and the
// controller running on its pins.
type session struct {
	platform p.Platform
	ctrl     *dimmer.Controller
	cancel   context.CancelFunc
	done     chan struct{}
}

func main() {
	os.Exit(run())
}

func run() int {
	cfile := flag.String("f", c.CONFILE, "config file to use")
	realhw := flag.Bool("real", false, "set to true if program runs on real hardware")
	flag.Parse()

	conf, err := loadConfig(*cfile, *realhw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := initLogging(conf); err != nil {
		fmt.Fprintf(os.Stderr, "can't initialise logging: %v\n", err)
		return 1
	}
	defer logging.Close()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	var changes <-chan struct{}
	watcher, err := c.NewWatcher(*cfile)
	if err != nil {
		slog.Warn("Config file changes will not be picked up", "error", err)
	} else {
		defer watcher.Close()
		changes = watcher.Changes()
	}

	var web *webServer
	if conf.Web.Enabled {
		web = newWebServer(conf.Web.Address, *cfile)
		web.start()
		defer web.stop()
	}

	for {
		s, err := startSession(conf, ossignal)
		if errors.Is(err, errInterrupted) {
			return 0
		}
		if err != nil {
			slog.Error("Failed to start dimmer", "error", err)
			return 1
		}
		if web != nil {
			web.setStatus(s.ctrl.Status())
		}

		reload := waitForSignal(ossignal, changes)
		if web != nil {
			web.setStatus(nil)
		}
		s.stop(conf)
		if !reload {
			slog.Info("Exiting")
			return 0
		}

		newconf, err := loadConfig(*cfile, *realhw)
		if err != nil {
			slog.Error("Reload failed, keeping current configuration", "error", err)
			continue
		}
		if logConfigFor(newconf) != logConfigFor(conf) {
			logging.Close()
			if err := initLogging(newconf); err != nil {
				fmt.Fprintf(os.Stderr, "can't initialise logging: %v\n", err)
				return 1
			}
		}
		conf = newconf
		slog.Info("Configuration reloaded", "file", *cfile)
	}
}

func loadConfig(cfile string, realhw bool) (*c.Config, error) {
	conf, err := c.ReadConfig(cfile)
	if err != nil {
		return nil, err
	}
	conf.RealHW = realhw
	return conf, nil
}

func logConfigFor(conf *c.Config) c.LogConfig {
	if conf.RealHW {
		return conf.Logging.HW
	}
	return conf.Logging.TUI
}

// initLogging buffers output in simulation mode until the TUI can show it.
func initLogging(conf *c.Config) error {
	lc := logConfigFor(conf)
	return logging.Init(!conf.RealHW, lc.Level, lc.Format, lc.File)
}

// waitForSignal blocks until the program should reload (true) or exit
// (false).
func waitForSignal(ossignal <-chan os.Signal, changes <-chan struct{}) bool {
	for {
		select {
		case sig := <-ossignal:
			if sig == syscall.SIGHUP {
				slog.Info("Received HUP, reloading config...")
				return true
			}
			slog.Info("Received signal, shutting down", "signal", sig)
			return false
		case <-changes:
			slog.Info("Config file changed, reloading...")
			return true
		}
	}
}

func startSession(conf *c.Config, ossignal chan os.Signal) (*session, error) {
	var platform p.Platform
	var delay hal.Delayer
	if conf.RealHW {
		platform = p.NewRaspberryPiPlatform(conf)
		delay = hal.PreciseDelay
	} else {
		platform = p.NewTUIPlatform(conf, ossignal)
		delay = hal.SleepDelay
	}

	if err := platform.Start(); err != nil {
		return nil, fmt.Errorf("can't start platform: %w", err)
	}
	select {
	case <-platform.Ready():
	case sig := <-ossignal:
		platform.Stop()
		slog.Info("Received signal before platform was ready", "signal", sig)
		return nil, errInterrupted
	}

	timing, err := conf.Dimmer.Timing()
	if err != nil {
		platform.Stop()
		return nil, err
	}
	ctrl, err := dimmer.New(platform.Pins(), timing, delay)
	if err != nil {
		platform.Stop()
		return nil, err
	}
	platform.SetEdgeHandler(ctrl.EdgeHandler())

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		platform: platform,
		ctrl:     ctrl,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		ctrl.Run(ctx)
	}()
	go logStatus(ctx, ctrl)
	return s, nil
}

func (s *session) stop(conf *c.Config) {
	s.cancel()
	<-s.done
	if !conf.RealHW {
		// The log pane goes away with the TUI.
		logging.BufferOutput()
	}
	s.platform.Stop()
}

func logStatus(ctx context.Context, ctrl *dimmer.Controller) {
	events := ctrl.Status()
	for {
		select {
		case <-ctx.Done():
			return
		case <-events.Channel():
			st := events.Value()
			slog.Debug("Status", "level", st.Level, "power", st.Power, "ramping", st.Ramping, "progress", st.Progress)
		}
	}
}
