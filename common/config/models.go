package config

type GeneralConfig struct {
	LogDirectory string `yaml:"logDirectory"`
	LogColors    bool   `yaml:"logColors"`
	JsonLogs     bool   `yaml:"jsonLogs"`
	LogLevel     string `yaml:"logLevel"`
}

type SigningConfig struct {
	Endpoint       string `yaml:"endpoint"`
	SharedSecret   string `yaml:"sharedSecret"`
	BatchSize      int    `yaml:"batchSize"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type StorageConfig struct {
	Endpoint     string `yaml:"endpoint"`
	BucketName   string `yaml:"bucketName"`
	AccessKeyId  string `yaml:"accessKeyId"`
	AccessSecret string `yaml:"accessSecret"`
	Region       string `yaml:"region"`
	StorageClass string `yaml:"storageClass"`
	Ssl          bool   `yaml:"ssl"`
}

type UploadsConfig struct {
	NumWorkers         int `yaml:"numWorkers"`
	ItemTimeoutSeconds int `yaml:"itemTimeoutSeconds"`
	PadWidth           int `yaml:"padWidth"`
}

type MultipartConfig struct {
	PartSizeBytes   int64 `yaml:"partSizeBytes"`
	PartConcurrency int   `yaml:"partConcurrency"`
	ThresholdBytes  int64 `yaml:"thresholdBytes"`
	PartAttempts    int   `yaml:"partAttempts"`
}

type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bindAddress"`
	Port        int    `yaml:"port"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}
