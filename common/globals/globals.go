package globals

var MetricsReloadChan = make(chan bool)
var StorageReloadChan = make(chan bool)
var PoolReloadChan = make(chan bool)
