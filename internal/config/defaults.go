package config

import (
	"strings"
)

const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultHTTPAddr       = ":5000"
	defaultHTTPRoute      = "/myfx_report"
	defaultHTTPMaxBody    = 8 << 20
	defaultReportTimezone = "UTC"
	defaultRenderEnabled  = true
	defaultRenderTimeout  = 20
	defaultRenderSettle   = 1500
	defaultRenderWidth    = 2000
	defaultRenderHeight   = 2800
	defaultRenderPerMin   = 60
	defaultRenderParallel = 2
	defaultRenderMAPeriod = 10
	defaultBreakerTrips   = 5
	defaultBreakerCool    = 30
)

// knownKeys lists every key that may be overridden through MYFX_* variables.
var knownKeys = []string{
	"app.env", "app.log_level", "app.log_path",
	"http.addr", "http.route", "http.max_body_bytes",
	"report.timezone",
	"render.enabled", "render.timeout_seconds", "render.settle_millis",
	"render.width_px", "render.height_px", "render.max_per_minute",
	"render.max_concurrent", "render.ma_period",
	"render.breaker_threshold", "render.breaker_cooldown_seconds",
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
	c.Report.applyDefaults(keys)
	c.Render.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
	)
	a.LogLevel = strings.ToLower(strings.TrimSpace(a.LogLevel))
	a.LogPath = strings.TrimSpace(a.LogPath)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr),
		stringFieldDefault("http.route", &h.Route, defaultHTTPRoute),
		int64FieldDefault("http.max_body_bytes", &h.MaxBodyBytes, defaultHTTPMaxBody),
	)
	h.Route = strings.TrimSpace(h.Route)
}

func (r *ReportConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("report.timezone", &r.Timezone, defaultReportTimezone),
	)
}

func (r *RenderConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("render.enabled", &r.Enabled, defaultRenderEnabled),
		intFieldDefault("render.timeout_seconds", &r.TimeoutSeconds, defaultRenderTimeout),
		intFieldDefault("render.settle_millis", &r.SettleMillis, defaultRenderSettle),
		intFieldDefault("render.width_px", &r.WidthPx, defaultRenderWidth),
		intFieldDefault("render.height_px", &r.HeightPx, defaultRenderHeight),
		intFieldDefault("render.max_per_minute", &r.MaxPerMinute, defaultRenderPerMin),
		intFieldDefault("render.max_concurrent", &r.MaxConcurrent, defaultRenderParallel),
		intFieldDefault("render.ma_period", &r.MAPeriod, defaultRenderMAPeriod),
		intFieldDefault("render.breaker_threshold", &r.BreakerThreshold, defaultBreakerTrips),
		intFieldDefault("render.breaker_cooldown_seconds", &r.BreakerCooldownSeconds, defaultBreakerCool),
	)
}

// applyFieldDefaults only touches keys that were not set explicitly, so an
// explicit zero survives.
func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func int64FieldDefault(key string, target *int64, def int64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
