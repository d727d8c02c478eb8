package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banterlab/wanwan/internal/provider"
	"github.com/banterlab/wanwan/internal/reply"
)

const namespace = "wanwan"

// Metrics groups all Prometheus instruments used by the service. It doubles
// as the reply pipeline's observer, so pipeline events land directly in the
// counters.
type Metrics struct {
	Messages           prometheus.Counter
	Replies            prometheus.Counter
	GenerationFailures *prometheus.CounterVec
	Commands           *prometheus.CounterVec
	Greetings          *prometheus.CounterVec
	FactsExtracted     prometheus.Counter

	handler http.Handler
}

// NewMetrics creates and registers the instruments. A nil registry uses the
// process-global default; tests pass their own to avoid duplicate
// registration across cases.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(prometheus.DefaultRegisterer)
	handler := promhttp.Handler()
	if reg != nil {
		factory = promauto.With(reg)
		handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	return &Metrics{
		Messages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound messages accepted for processing.",
		}),
		Replies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Successfully generated replies.",
		}),
		GenerationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "LLM generation failures by classified kind.",
		}, []string{"kind"}),
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Recognized slash commands by command.",
		}, []string{"command"}),
		Greetings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "greetings_total",
			Help:      "Proactive greetings delivered by slot.",
		}, []string{"slot"}),
		FactsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facts_extracted_total",
			Help:      "Facts extracted from inbound messages.",
		}),
		handler: handler,
	}
}

// MessageReceived records one inbound message.
func (m *Metrics) MessageReceived() {
	m.Messages.Inc()
}

// GreetingSent records one delivered proactive greeting.
func (m *Metrics) GreetingSent(slot string) {
	m.Greetings.WithLabelValues(slot).Inc()
}

// ReplyGenerated implements reply.Observer.
func (m *Metrics) ReplyGenerated() {
	m.Replies.Inc()
}

// GenerationFailed implements reply.Observer.
func (m *Metrics) GenerationFailed(kind provider.Kind) {
	m.GenerationFailures.WithLabelValues(kind.String()).Inc()
}

// CommandHandled implements reply.Observer.
func (m *Metrics) CommandHandled(cmd reply.Command) {
	m.Commands.WithLabelValues(cmd.String()).Inc()
}

// FactExtracted implements reply.Observer.
func (m *Metrics) FactExtracted() {
	m.FactsExtracted.Inc()
}

// Handler serves the Prometheus exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

var _ reply.Observer = (*Metrics)(nil)
