package config

func NewDefaultMainConfig() MainUploaderConfig {
	return MainUploaderConfig{
		General: GeneralConfig{
			LogDirectory: "logs",
			LogColors:    false,
			JsonLogs:     false,
			LogLevel:     "info",
		},
		Signing: SigningConfig{
			Endpoint:       "http://localhost:8321",
			SharedSecret:   "",
			BatchSize:      100,
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Endpoint:     "s3.amazonaws.com",
			BucketName:   "episode-media",
			AccessKeyId:  "",
			AccessSecret: "",
			Region:       "",
			StorageClass: "STANDARD",
			Ssl:          true,
		},
		Uploads: UploadsConfig{
			NumWorkers:         20,
			ItemTimeoutSeconds: 120,
			PadWidth:           3,
		},
		Multipart: MultipartConfig{
			PartSizeBytes:   8388608, // 8mb
			PartConcurrency: 3,
			ThresholdBytes:  8388608, // 8mb
			PartAttempts:    3,
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "localhost",
			Port:        9000,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Dsn:         "not supplied",
			Environment: "",
			Debug:       false,
		},
	}
}
