package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Ready         bool         `json:"ready"`
	Relays        []RelayJSON  `json:"relays"`
	Buttons       []ButtonJSON `json:"buttons"`
	Watchdog      WatchdogJSON `json:"watchdog"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// RelayJSON reports one relay output.
type RelayJSON struct {
	Index                int   `json:"index"`
	Pin                  int   `json:"pin"`
	Active               bool  `json:"active"`
	MomentaryRemainingMs int64 `json:"momentary_remaining_ms"`
}

// ButtonJSON reports one debounced button.
type ButtonJSON struct {
	Index   int  `json:"index"`
	Pressed bool `json:"pressed"`
}

// WatchdogJSON reports the reboot watchdog.
type WatchdogJSON struct {
	Mode                string `json:"mode"`
	BootCount           uint8  `json:"boot_count"`
	PersistedCount      uint8  `json:"persisted_count"`
	DisconnectedForMs   int64  `json:"disconnected_for_ms"`
	ResetForced         bool   `json:"reset_forced"`
	MessagingConfigured bool   `json:"messaging_configured"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	DeviceID  string `json:"device_id"`
	BaseTopic string `json:"base_topic"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs            int64  `json:"poll_ms"`
	DebounceMs        int64  `json:"debounce_ms"`
	MomentaryMs       int64  `json:"momentary_ms"`
	StatsIntervalS    int64  `json:"stats_interval_s"`
	HTTPAddr          string `json:"http_addr"`
	Threshold         uint8  `json:"watchdog_threshold"`
	MaxDisconnectedMs int64  `json:"max_disconnected_ms"`
	ResetMode         string `json:"reset_mode"`
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Node.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}

	inner := StatusInner{
		Ready: snap.Ready,
		Watchdog: WatchdogJSON{
			Mode:                mode,
			BootCount:           snap.Node.BootCount,
			PersistedCount:      snap.Node.PersistedCount,
			DisconnectedForMs:   snap.DisconnectedFor().Milliseconds(),
			ResetForced:         snap.Node.ResetForced,
			MessagingConfigured: snap.Node.Configured,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.Node.Connected,
			Broker:    snap.Config.Broker,
			DeviceID:  snap.Config.DeviceID,
			BaseTopic: snap.Config.BaseTopic,
		},
		Config: ConfigJSON{
			PollMs:            snap.Config.PollMs,
			DebounceMs:        snap.Config.DebounceMs,
			MomentaryMs:       snap.Config.MomentaryMs,
			StatsIntervalS:    snap.Config.StatsIntervalS,
			HTTPAddr:          snap.Config.HTTPAddr,
			Threshold:         snap.Config.Threshold,
			MaxDisconnectedMs: snap.Config.MaxDisconnectedMs,
			ResetMode:         snap.Config.ResetMode,
		},
	}
	for i, r := range snap.Node.Relays {
		inner.Relays = append(inner.Relays, RelayJSON{
			Index:                i,
			Pin:                  r.Pin,
			Active:               r.Active,
			MomentaryRemainingMs: snap.MomentaryRemaining(i).Milliseconds(),
		})
	}
	for i, pressed := range snap.Node.Buttons {
		inner.Buttons = append(inner.Buttons, ButtonJSON{Index: i, Pressed: pressed})
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
