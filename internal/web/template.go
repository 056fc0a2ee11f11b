package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/dual-relay/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Dual Relay</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.suspect { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Dual Relay</h1>

<h2>Relays</h2>
<table>
{{range .Relays}}<tr><th>Relay {{.Index}} (GPIO{{.Pin}})</th><td id="relay{{.Index}}" class="{{if .Active}}on{{else}}off{{end}}">{{if .Active}}ON{{else}}OFF{{end}}{{if .Remaining}} ({{ms .Remaining}}ms left){{end}}</td></tr>
{{end}}</table>

<h2>Buttons</h2>
<table>
{{range $i, $pressed := .Node.Buttons}}<tr><th>Button {{$i}}</th><td id="button{{$i}}" class="{{if $pressed}}on{{else}}off{{end}}">{{if $pressed}}pressed{{else}}released{{end}}</td></tr>
{{end}}</table>

<h2>Watchdog</h2>
<table>
<tr><th>Mode</th><td id="mode" class="{{if eq (printf "%s" .Node.Mode) "SUSPECT"}}suspect{{end}}">{{printf "%s" .Node.Mode}}</td></tr>
<tr><th>Boot count</th><td>{{.Node.BootCount}} (stored {{.Node.PersistedCount}}, threshold {{.Config.Threshold}})</td></tr>
{{if not .Node.DisconnectedSince.IsZero}}<tr><th>Disconnected for</th><td class="disconnected">{{uptime .DisconnectedFor}}</td></tr>{{end}}
{{if .Node.ResetForced}}<tr><th>Reset</th><td class="disconnected">forced</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .Node.Connected}}connected{{else}}disconnected{{end}}">{{if .Node.Connected}}connected{{else if .Node.Configured}}disconnected{{else}}not configured{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Device</th><td>{{.Config.BaseTopic}}{{.Config.DeviceID}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Momentary</th><td>{{.Config.MomentaryMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

type relayRow struct {
	Index     int
	Pin       int
	Active    bool
	Remaining time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Templates cannot call methods with arguments, so derived values are fields.
	data := struct {
		status.Snapshot
		Uptime          time.Duration
		DisconnectedFor time.Duration
		Relays          []relayRow
	}{
		Snapshot:        snap,
		Uptime:          snap.Uptime(),
		DisconnectedFor: snap.DisconnectedFor(),
	}
	for i, r := range snap.Node.Relays {
		data.Relays = append(data.Relays, relayRow{
			Index:     i,
			Pin:       r.Pin,
			Active:    r.Active,
			Remaining: snap.MomentaryRemaining(i),
		})
	}
	indexTmpl.Execute(w, data)
}
