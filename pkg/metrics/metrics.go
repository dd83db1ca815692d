package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "familytree"

var (
	// SavesTotal counts person saves by outcome: ok, partial, invalid, guest, upload_failed, failed.
	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "person_saves_total",
			Help:      "Person save operations by outcome",
		},
		[]string{"outcome"},
	)

	// DeletesTotal counts person deletes by outcome.
	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "person_deletes_total",
			Help:      "Person delete operations by outcome",
		},
		[]string{"outcome"},
	)

	// RelationshipUpdatesTotal counts updates applied to related records.
	RelationshipUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_updates_total",
			Help:      "Updates applied to related person records",
		},
		[]string{"status"},
	)

	PhotoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_uploads_total",
			Help:      "Photo uploads by status",
		},
		[]string{"status"},
	)

	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Active live feed subscriptions",
		},
	)

	FeedDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_deliveries_total",
			Help:      "Snapshots delivered to subscribers by collection",
		},
		[]string{"collection"},
	)
)
