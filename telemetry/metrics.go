package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdrive_uploads_total",
		Help: "Completed file uploads.",
	})

	UploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdrive_upload_bytes_total",
		Help: "Bytes accepted into storage by completed uploads.",
	})

	QuotaRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdrive_quota_rejections_total",
		Help: "Uploads rejected by the per-user storage quota.",
	})

	BlobDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mdrive_blob_delete_failures_total",
		Help: "Best-effort object store deletions that failed (possible orphan blobs).",
	})
)
