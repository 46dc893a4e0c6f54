package config

type MainUploaderConfig struct {
	General   GeneralConfig   `yaml:"uploader"`
	Signing   SigningConfig   `yaml:"signing"`
	Storage   StorageConfig   `yaml:"storage"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Multipart MultipartConfig `yaml:"multipart"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Sentry    SentryConfig    `yaml:"sentry"`
}
