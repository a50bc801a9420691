// Package metrics publishes operational gauges about rooms, votes and broadcasts.
// File: metrics/metrics.go
package metrics

import (
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"go-live-polls/logger"
)

// Namespace for all live-polls metrics
const Namespace = "LivePolls"

// Publisher receives metric events from the real-time core.
type Publisher interface {
	RoomConnections(sessionCode string, count int)
	VoteRecorded(sessionCode string)
	BroadcastFanout(sessionCode string, delivered int)
}

// Noop discards every metric.
type Noop struct{}

func (Noop) RoomConnections(string, int) {}
func (Noop) VoteRecorded(string)         {}
func (Noop) BroadcastFanout(string, int) {}

// DefaultQueueSize bounds how many metrics may wait for the worker.
const DefaultQueueSize = 1024

type datum struct {
	name        string
	value       float64
	unit        string
	sessionCode string
}

// CloudWatchPublisher queues each metric for a single background worker so
// callers on the connection path never block on the network. When the queue
// is full the metric is dropped.
type CloudWatchPublisher struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string

	queue     chan datum
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewCloudWatchPublisher reuses a single CloudWatch client for all calls.
func NewCloudWatchPublisher(client cloudwatchiface.CloudWatchAPI) *CloudWatchPublisher {
	return NewCloudWatchPublisherSize(client, DefaultQueueSize)
}

// NewCloudWatchPublisherSize is NewCloudWatchPublisher with an explicit queue size.
func NewCloudWatchPublisherSize(client cloudwatchiface.CloudWatchAPI, size int) *CloudWatchPublisher {
	if size < 1 {
		size = 1
	}
	p := &CloudWatchPublisher{
		client:    client,
		namespace: Namespace,
		queue:     make(chan datum, size),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

// RoomConnections pushes the current number of connections in a room.
func (p *CloudWatchPublisher) RoomConnections(sessionCode string, count int) {
	p.enqueue(datum{"RoomConnections", float64(count), cloudwatch.StandardUnitCount, sessionCode})
}

// VoteRecorded counts one accepted vote.
func (p *CloudWatchPublisher) VoteRecorded(sessionCode string) {
	p.enqueue(datum{"VotesRecorded", 1, cloudwatch.StandardUnitCount, sessionCode})
}

// BroadcastFanout pushes how many members received one broadcast.
func (p *CloudWatchPublisher) BroadcastFanout(sessionCode string, delivered int) {
	p.enqueue(datum{"BroadcastFanout", float64(delivered), cloudwatch.StandardUnitCount, sessionCode})
}

// Close stops accepting metrics and blocks until the queue is drained.
func (p *CloudWatchPublisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	<-p.done
}

func (p *CloudWatchPublisher) enqueue(d datum) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- d:
	default:
		logger.Warn.Printf("[CloudWatchPublisher] Queue full, dropping %s for %s", d.name, d.sessionCode)
	}
}

func (p *CloudWatchPublisher) run() {
	defer close(p.done)
	for d := range p.queue {
		p.putMetric(d.name, d.value, d.unit, d.sessionCode)
	}
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func (p *CloudWatchPublisher) putMetric(name string, value float64, unit, sessionCode string) {
	_, err := p.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(name),
				Dimensions: []*cloudwatch.Dimension{
					{
						Name:  aws.String("SessionCode"),
						Value: aws.String(sessionCode),
					},
				},
				Timestamp: aws.Time(time.Now()),
				Value:     aws.Float64(value),
				Unit:      aws.String(unit),
			},
		},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", name, err)
	}
}
