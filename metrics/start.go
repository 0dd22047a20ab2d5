package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Start registers the process and runtime collectors and keeps a heartbeat
// gauge alive until ctx is done.
func Start(ctx context.Context, reg prometheus.Registerer) error {
	heartbeat := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "heartbeat",
		Help:      "Unix time of the last heartbeat",
	})
	for _, c := range []prometheus.Collector{
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: Namespace}),
		collectors.NewGoCollector(),
		heartbeat,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	go reportHeartBeat(ctx, heartbeat)
	return nil
}

func reportHeartBeat(ctx context.Context, g prometheus.Gauge) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		g.SetToCurrentTime()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
