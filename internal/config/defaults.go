package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 18080
	}
	if cfg.Server.CORSAllowedOrigins == nil {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Server.FeedbackRateLimit == 0 {
		cfg.Server.FeedbackRateLimit = 120
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = SourceCSV
	}
	if cfg.Data.EmbeddingsPath == "" {
		cfg.Data.EmbeddingsPath = "/usr/local/var/memefeed/data/embeddings.csv"
	}
	if cfg.Data.IdentifiersPath == "" {
		cfg.Data.IdentifiersPath = "/usr/local/var/memefeed/data/meme_paths.json"
	}
	if cfg.Data.DatabasePath == "" {
		cfg.Data.DatabasePath = "/usr/local/var/memefeed/data/memes.db"
	}
	if cfg.Recommend.DefaultCount == 0 {
		cfg.Recommend.DefaultCount = 10
	}
	if cfg.Recommend.MaxCount == 0 {
		cfg.Recommend.MaxCount = 100
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
}
