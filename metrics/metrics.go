// Package metrics exports scale set orchestration events as Prometheus
// metrics.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/libopenstorage/vmssops"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
)

const (
	namespace = "vmssops"

	operationUpdate          = "update"
	operationUpdateInstances = "update_instances"

	resultSuccess   = "success"
	resultFailed    = "failed"
	resultCancelled = "cancelled"
)

type eventInfo struct {
	operation string
	// result is empty for start events
	result string
}

var events = map[vmssops.Event]eventInfo{
	vmssops.EventUpdateStart:              {operation: operationUpdate},
	vmssops.EventUpdateSuccess:            {operation: operationUpdate, result: resultSuccess},
	vmssops.EventUpdateFailed:             {operation: operationUpdate, result: resultFailed},
	vmssops.EventUpdateCancelled:          {operation: operationUpdate, result: resultCancelled},
	vmssops.EventUpdateInstancesStart:     {operation: operationUpdateInstances},
	vmssops.EventUpdateInstancesSuccess:   {operation: operationUpdateInstances, result: resultSuccess},
	vmssops.EventUpdateInstancesFailed:    {operation: operationUpdateInstances, result: resultFailed},
	vmssops.EventUpdateInstancesCancelled: {operation: operationUpdateInstances, result: resultCancelled},
}

// Observer is a vmssops.Observer counting orchestration events. It is safe
// for concurrent use.
type Observer struct {
	events    *prometheus.CounterVec
	instances prometheus.Counter
	duration  *prometheus.HistogramVec
	inFlight  prometheus.Gauge

	mu      sync.Mutex
	started map[string]time.Time
	now     func() time.Time
}

// NewObserver creates an observer and registers its collectors with
// registerer.
func NewObserver(registerer prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Number of orchestration events by operation and event.",
		}, []string{"operation", "event"}),
		instances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_requested_total",
			Help:      "Number of instance ids submitted for upgrade.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of finished operations by operation and result.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		}, []string{"operation", "result"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "operations_in_flight",
			Help:      "Number of started operations that have not finished.",
		}),
		started: make(map[string]time.Time),
		now:     time.Now,
	}

	for _, c := range o.collectors() {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) collectors() []prometheus.Collector {
	return []prometheus.Collector{o.events, o.instances, o.duration, o.inFlight}
}

// Notify implements vmssops.Observer. Unknown events are ignored.
func (o *Observer) Notify(event vmssops.Event, properties map[string]string) {
	info, ok := events[event]
	if !ok {
		logrus.Debugf("Ignoring unknown event %s", event)
		return
	}
	o.events.WithLabelValues(info.operation, string(event)).Inc()

	runID := properties[vmssops.PropertyRunID]
	if info.result == "" {
		o.start(runID)
		if count, err := strconv.Atoi(properties[vmssops.PropertyInstanceCount]); err == nil {
			o.instances.Add(float64(count))
		}
		return
	}
	o.finish(runID, info)
}

func (o *Observer) start(runID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started[runID] = o.now()
	o.inFlight.Inc()
}

func (o *Observer) finish(runID string, info eventInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	start, ok := o.started[runID]
	if !ok {
		return
	}
	delete(o.started, runID)
	o.inFlight.Dec()
	o.duration.WithLabelValues(info.operation, info.result).Observe(o.now().Sub(start).Seconds())
}

// Push pushes all metrics gathered by gatherer to the Pushgateway at url,
// replacing the metrics previously pushed for job.
func Push(url, job string, gatherer prometheus.Gatherer) error {
	logrus.Debugf("Pushing metrics of job %s to %s", job, url)
	return push.New(url, job).Gatherer(gatherer).Push()
}
