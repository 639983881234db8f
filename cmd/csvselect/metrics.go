package main

import (
	"fmt"

	"csvselect/internal/config"
	"csvselect/internal/metrics"
	"csvselect/internal/metrics/datadog"
	"csvselect/internal/metrics/prompush"
)

const (
	defaultPushgatewayURL = "http://localhost:9091"
	defaultDogStatsDAddr  = "127.0.0.1:8125"
)

// newMetricsBackend builds the configured backend. A nil backend with a nil
// error means metrics are disabled.
func newMetricsBackend(m config.Metrics, job string) (metrics.Backend, error) {
	switch m.Backend {
	case "", "none":
		return nil, nil
	case "pushgateway", "prom", "prometheus":
		url := m.PushgatewayURL
		if url == "" {
			url = defaultPushgatewayURL
		}
		return prompush.NewBackend(job, url)
	case "datadog", "dogstatsd":
		addr := m.DogStatsDAddr
		if addr == "" {
			addr = defaultDogStatsDAddr
		}
		tags := append([]string{"job:" + job}, m.Tags...)
		return datadog.NewBackend(datadog.Config{Addr: addr, Namespace: m.Namespace, GlobalTags: tags})
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", m.Backend)
	}
}
