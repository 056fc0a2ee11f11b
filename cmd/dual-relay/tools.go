package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sweeney/dual-relay/internal/config"
	"github.com/sweeney/dual-relay/internal/eeprom"
	"github.com/sweeney/dual-relay/internal/gpio"
)

func runState(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reader, err := gpio.OpenInputs(cfg.GPIO.Driver, cfg.GPIO.Chip, cfg.ButtonPins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	store, err := eeprom.OpenFile(cfg.Watchdog.StorePath, cfg.Watchdog.StoreSize)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	return printState(cmd.OutOrStdout(), reader, store, cfg)
}

func printState(w io.Writer, reader gpio.Reader, store *eeprom.FileStore, cfg config.Config) error {
	levels, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	pins := cfg.ButtonPins()
	for i, high := range levels {
		fmt.Fprintf(w, "button%d (GPIO%d): %s\n", i, pins[i], buttonString(high))
	}
	fmt.Fprintf(w, "boot count: %d (threshold %d)\n", store.Get(cfg.Watchdog.Address), cfg.Watchdog.Threshold)
	return nil
}

// buttonString renders a raw level. Buttons pull the line low when pressed.
func buttonString(high bool) string {
	if high {
		return "released"
	}
	return "pressed"
}

func runBootcount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := eeprom.OpenFile(cfg.Watchdog.StorePath, cfg.Watchdog.StoreSize)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	return bootcount(cmd.OutOrStdout(), store, cfg.Watchdog.Address, bootcountReset)
}

func bootcount(w io.Writer, store *eeprom.FileStore, addr int, reset bool) error {
	if reset {
		store.Put(addr, 0)
		if err := store.Commit(); err != nil {
			return fmt.Errorf("reset boot count: %w", err)
		}
	}
	fmt.Fprintln(w, store.Get(addr))
	return nil
}
