package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/dual-relay/internal/config"
	"github.com/sweeney/dual-relay/internal/eeprom"
	"github.com/sweeney/dual-relay/internal/gpio"
	"github.com/sweeney/dual-relay/internal/logic"
	"github.com/sweeney/dual-relay/internal/metrics"
	"github.com/sweeney/dual-relay/internal/mqtt"
	"github.com/sweeney/dual-relay/internal/node"
	"github.com/sweeney/dual-relay/internal/status"
	"github.com/sweeney/dual-relay/internal/system"
	"github.com/sweeney/dual-relay/internal/web"
)

// messenger is what the loop needs from the MQTT client.
type messenger interface {
	node.Messenger
	Events() <-chan mqtt.Event
	PublishStats(uptime, interval time.Duration)
}

// daemon bundles runLoop's collaborators.
type daemon struct {
	cfg     config.Config
	port    gpio.Port
	msg     messenger
	store   logic.ByteStore
	reset   logic.Resetter
	tracker *status.Tracker
	metrics *metrics.Recorder
	log     logrus.FieldLogger
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return run(cfg, logrus.StandardLogger())
}

func run(cfg config.Config, log logrus.FieldLogger) error {
	port, err := gpio.Open(cfg.GPIO.Driver, cfg.GPIO.Chip, cfg.ButtonPins(), cfg.RelayPins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer port.Close()

	store, err := eeprom.OpenFile(cfg.Watchdog.StorePath, cfg.Watchdog.StoreSize)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	rebooter, err := system.NewRebooter(cfg.Watchdog.ResetMode, log)
	if err != nil {
		return fmt.Errorf("init reset: %w", err)
	}

	client, err := mqtt.NewRealClient(mqtt.Options{
		Broker:     cfg.MQTT.Broker,
		Username:   cfg.MQTT.Username,
		Password:   cfg.MQTT.Password,
		Device:     cfg.Device(),
		Properties: node.Properties(),
		BufferSize: cfg.MQTT.BufferSize,
	}, log)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()
	rebooter.BeforeReset(func() {
		if err := client.Close(); err != nil {
			log.Warnf("close mqtt before reset: %v", err)
		}
	})

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	tracker.SetNetwork(status.ReadNetworkInfo())
	recorder := metrics.New()

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, recorder.Registry())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Infof("started: poll=%v debounce=%v momentary=%v %s", cfg.PollInterval(), cfg.Debounce(), cfg.Momentary(), client)

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(daemon{
		cfg:     cfg,
		port:    port,
		msg:     client,
		store:   store,
		reset:   rebooter,
		tracker: tracker,
		metrics: recorder,
		log:     log,
	}, time.Now, ticker.C, sigCh)
}

// runLoop boots the controller and runs it until a signal arrives. Broker
// events are handled at the start of each tick so the controller only ever
// runs on this goroutine.
func runLoop(d daemon, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	ctrl := node.New(node.Config{
		ButtonPins: d.cfg.ButtonPins(),
		RelayPins:  d.cfg.RelayPins(),
		Debounce:   d.cfg.Debounce(),
		Momentary:  d.cfg.Momentary(),
		Watchdog:   d.cfg.WatchdogConfig(),
		Clock:      now,
	}, d.port, d.msg, d.store, d.reset, d.log)
	if d.metrics != nil {
		ctrl.SetObserver(d.metrics)
	}
	ctrl.Boot()

	heartbeat := logic.NewHeartbeat(d.cfg.StatsInterval(), startTime)

	for {
		select {
		case s := <-sig:
			d.log.Infof("received %v, shutting down", s)
			ctrl.Release()
			return nil

		case <-tick:
			dispatchEvents(ctrl, d.msg.Events(), d.log)

			t := now()
			var raw []bool
			levels, err := d.port.Read()
			if err != nil {
				d.log.Warnf("gpio read error: %v", err)
			} else {
				raw = levels[:]
			}
			ctrl.Tick(t, raw)

			if uptime, ok := heartbeat.Due(t); ok {
				d.log.Debugf("stats: uptime=%v", uptime)
				d.msg.PublishStats(uptime, heartbeat.Interval())
				if d.tracker != nil {
					d.tracker.SetNetwork(status.ReadNetworkInfo())
				}
			}

			st := ctrl.State()
			if d.tracker != nil {
				d.tracker.Update(st)
			}
			if d.metrics != nil {
				d.metrics.Update(st, t)
			}
		}
	}
}

// dispatchEvents hands every queued broker event to the controller without blocking.
func dispatchEvents(h node.Handler, events <-chan mqtt.Event, log logrus.FieldLogger) {
	for {
		select {
		case e := <-events:
			switch e.Type {
			case mqtt.EventConnected:
				h.OnConnected()
			case mqtt.EventPropertySet:
				if !h.OnPropertySet(e.Property, e.Value) {
					log.Warnf("set on unknown property %q", e.Property)
				}
			}
		default:
			return
		}
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		PollMs:            cfg.PollIntervalMs,
		DebounceMs:        cfg.DebounceMs,
		MomentaryMs:       cfg.MomentaryMs,
		StatsIntervalS:    cfg.MQTT.StatsIntervalS,
		Broker:            cfg.MQTT.Broker,
		DeviceID:          cfg.MQTT.DeviceID,
		BaseTopic:         cfg.MQTT.BaseTopic,
		HTTPAddr:          cfg.HTTP.Addr,
		Threshold:         cfg.Watchdog.Threshold,
		MaxDisconnectedMs: cfg.Watchdog.MaxDisconnectedMs,
		ResetMode:         cfg.Watchdog.ResetMode,
	}
}
