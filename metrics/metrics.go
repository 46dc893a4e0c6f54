package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var SignRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "uploader_sign_requests_total",
}, []string{"mode"})
var SignFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "uploader_sign_failures_total",
}, []string{"mode"})
var UploadAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "uploader_upload_attempts_total",
}, []string{"tier"})
var UploadOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "uploader_upload_outcomes_total",
}, []string{"outcome"})
var MultipartOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "uploader_multipart_operations_total",
}, []string{"operation"})
var BytesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "uploader_uploaded_bytes_total",
})

func init() {
	prometheus.MustRegister(SignRequests)
	prometheus.MustRegister(SignFailures)
	prometheus.MustRegister(UploadAttempts)
	prometheus.MustRegister(UploadOutcomes)
	prometheus.MustRegister(MultipartOperations)
	prometheus.MustRegister(BytesUploaded)
}
