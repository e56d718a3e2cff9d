package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	weightPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "progress_service",
		Subsystem: "persistence",
		Name:      "last_weight_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent weight entry persisted to Postgres.",
	})
	photoPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "progress_service",
		Subsystem: "persistence",
		Name:      "last_photo_uploaded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent photo row persisted to Postgres.",
	})
	photoUploadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "progress_service",
		Subsystem: "photos",
		Name:      "uploads_total",
		Help:      "Number of photos uploaded, labeled by semantic category.",
	}, []string{"category"})
	slotCollisionCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "progress_service",
		Subsystem: "photos",
		Name:      "slot_collisions_total",
		Help:      "Number of uploads rejected because the computed physical slot was taken.",
	})
	complianceRefreshCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "progress_service",
		Subsystem: "challenge",
		Name:      "compliance_refreshes_total",
		Help:      "Number of challenge compliance snapshot computations.",
	})
)

func init() {
	prometheus.MustRegister(weightPersistGauge, photoPersistGauge, photoUploadCounter, slotCollisionCounter, complianceRefreshCounter)
}

// RecordWeightPersisted updates the weight persistence watermark gauge.
func RecordWeightPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	weightPersistGauge.Set(float64(ts.Unix()))
}

// RecordPhotoPersisted updates the photo persistence watermark gauge.
func RecordPhotoPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	photoPersistGauge.Set(float64(ts.Unix()))
}

// RecordPhotoUploaded counts a successful upload by category.
func RecordPhotoUploaded(category string) {
	photoUploadCounter.WithLabelValues(category).Inc()
}

// RecordSlotCollision counts a rejected upload due to slot contention.
func RecordSlotCollision() {
	slotCollisionCounter.Inc()
}

// RecordComplianceRefresh counts a compliance snapshot computation.
func RecordComplianceRefresh() {
	complianceRefreshCounter.Inc()
}
