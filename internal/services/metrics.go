package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogallery_ingest_total",
			Help: "Photos ingested, by result.",
		},
		[]string{"result"},
	)

	previewFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogallery_preview_failures_total",
			Help: "Photos stored without a preview.",
		},
	)

	presignFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogallery_presign_failures_total",
			Help: "Access URLs that could not be generated.",
		},
	)
)
