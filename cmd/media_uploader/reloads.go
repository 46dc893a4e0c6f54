package main

import (
	"github.com/lexiport/episode-media-uploader/common/globals"
	"github.com/lexiport/episode-media-uploader/datastores"
	"github.com/lexiport/episode-media-uploader/metrics"
	"github.com/lexiport/episode-media-uploader/pool"
)

var reloadMetricsChan = make(chan bool)
var reloadStorageChan = make(chan bool)
var reloadPoolChan = make(chan bool)

func setupReloads() {
	reloadMetrics()
	reloadStorage()
	reloadPool()
}

func stopReloads() {
	reloadMetricsChan <- false
	reloadStorageChan <- false
	reloadPoolChan <- false
}

func reloadMetrics() {
	go func() {
		for {
			select {
			case <-globals.MetricsReloadChan:
				metrics.Reload()
			case <-reloadMetricsChan:
				return
			}
		}
	}()
}

func reloadStorage() {
	go func() {
		for {
			select {
			case <-globals.StorageReloadChan:
				datastores.ResetS3Client()
			case <-reloadStorageChan:
				return
			}
		}
	}()
}

func reloadPool() {
	go func() {
		for {
			select {
			case <-globals.PoolReloadChan:
				pool.AdjustSize()
			case <-reloadPoolChan:
				return
			}
		}
	}()
}
