package health

import (
	"bytes"
	"fmt"
	"html/template"
)

var dashboardRows = []struct{ key, id, label string }{
	{"database", "db", "Postgres"},
	{"redis", "redis", "Redis"},
	{"priceFeed", "feed", "Price feed"},
}

type dashboardDep struct {
	ID     string
	Name   string
	Status string
	Ping   string
	OK     bool
}

type dashboardData struct {
	OK          bool
	Traffic     TrafficInfo
	AvgLatency  string
	Runtime     RuntimeInfo
	Uptime      string
	Deps        []dashboardDep
	LastMethod  string
	LastPath    string
	LastIP      string
	RefreshSecs int
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta http-equiv="refresh" content="{{.RefreshSecs}}">
  <title>Coinfolio · API Status</title>
  <style>
    body { font-family: system-ui, sans-serif; background: #0f172a; color: #e2e8f0; margin: 0; padding: 32px; }
    main { max-width: 880px; margin: 0 auto; }
    h1 { margin: 0 0 4px; font-size: 28px; }
    h1.ok { color: #34d399; } h1.issue { color: #f87171; }
    .sub { color: #94a3b8; margin-bottom: 24px; font-size: 14px; }
    section { background: #1e293b; border-radius: 12px; padding: 18px 22px; margin-bottom: 16px; }
    h2 { font-size: 12px; letter-spacing: 1px; text-transform: uppercase; color: #94a3b8; margin: 0 0 10px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    td { padding: 6px 0; border-bottom: 1px solid #334155; }
    td:last-child { text-align: right; font-variant-numeric: tabular-nums; }
    .pill { padding: 2px 10px; border-radius: 8px; font-size: 12px; font-weight: 600; }
    .up { background: #064e3b; color: #6ee7b7; } .down { background: #7f1d1d; color: #fca5a5; }
    a { color: #7dd3fc; }
    code { font-size: 13px; }
  </style>
</head>
<body>
<main>
  {{if .OK}}<h1 class="ok">Portfolio API healthy</h1>{{else}}<h1 class="issue">Portfolio API degraded</h1>{{end}}
  <div class="sub">Refreshes every {{.RefreshSecs}}s · raw data at <a href="/health/json">/health/json</a> · recent failures at <a href="/health/errors">/health/errors</a></div>

  <section>
    <h2>Dependencies</h2>
    <table>
      {{range .Deps}}<tr><td>{{.Name}}</td><td><span id="pill-{{.ID}}" class="pill {{if .OK}}up{{else}}down{{end}}">{{.Status}}</span> {{.Ping}}</td></tr>
      {{end}}
    </table>
  </section>

  <section>
    <h2>Traffic</h2>
    <table>
      <tr><td>Requests</td><td>{{.Traffic.TotalRequests}}</td></tr>
      <tr><td>Failed (5xx)</td><td>{{.Traffic.FailedCount}}</td></tr>
      <tr><td>Success rate</td><td>{{.Traffic.SuccessRate}}%</td></tr>
      <tr><td>Avg latency</td><td>{{.AvgLatency}} ms</td></tr>
      <tr><td>Last request</td><td><code>{{.LastMethod}} {{.LastPath}}</code> from {{.LastIP}}</td></tr>
    </table>
  </section>

  <section>
    <h2>Runtime</h2>
    <table>
      <tr><td>Uptime</td><td>{{.Uptime}}</td></tr>
      <tr><td>Heap in use</td><td>{{.Runtime.Memory.HeapUsed}} MB</td></tr>
      <tr><td>Reserved</td><td>{{.Runtime.Memory.RSS}} MB</td></tr>
      <tr><td>Platform</td><td>{{.Runtime.Platform}} · {{.Runtime.GoVersion}}</td></tr>
    </table>
  </section>
</main>
</body>
</html>
`))

// RenderDashboardHTML returns the status page served at GET /.
func RenderDashboardHTML(health CollectResult) string {
	data := dashboardData{
		OK:          health.Status == "ok",
		Traffic:     health.Traffic,
		AvgLatency:  fmt.Sprint(health.Traffic.AvgResponseTime),
		Runtime:     health.Runtime,
		Uptime:      formatUptime(health.Runtime.UptimeSeconds),
		LastMethod:  "-",
		LastPath:    "-",
		LastIP:      "-",
		RefreshSecs: 30,
	}
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			data.LastMethod = v
		}
		if v, ok := m["path"].(string); ok {
			data.LastPath = v
		}
		if v, ok := m["ip"].(string); ok {
			data.LastIP = v
		}
	}

	for _, row := range dashboardRows {
		d, ok := health.Dependencies[row.key]
		if !ok {
			continue
		}
		ping := ""
		if ms, ok := d.PingMs.(*int64); ok && ms != nil {
			ping = fmt.Sprintf("%d ms", *ms)
		}
		data.Deps = append(data.Deps, dashboardDep{
			ID:     row.id,
			Name:   row.label,
			Status: d.Status,
			Ping:   ping,
			OK:     d.Status == "connected" || d.Status == "reachable" || d.Status == "disabled",
		})
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		return "<!DOCTYPE html><title>Coinfolio · API Status</title><p>status page unavailable: " + template.HTMLEscapeString(err.Error()) + "</p>"
	}
	return buf.String()
}

func formatUptime(sec int64) string {
	d := sec / 86400
	h := (sec % 86400) / 3600
	m := (sec % 3600) / 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	}
	return fmt.Sprintf("%dh %dm %ds", h, m, sec%60)
}
