package config

import (
	"github.com/gucchon001/Confluence-firebase-sub010/internal/filter"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/lexical"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/confsearch/data/corpus.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/confsearch/data/indices/bleve"
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = "http://localhost:8100/embed"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.TimeoutMs == 0 {
		cfg.Embedding.TimeoutMs = 5000
	}
	if cfg.Search.CandidateLimit == 0 {
		cfg.Search.CandidateLimit = 100
	}
	if cfg.Search.StrategyTimeoutMs == 0 {
		cfg.Search.StrategyTimeoutMs = 2500
	}
	if cfg.Search.OverallTimeoutMs == 0 {
		cfg.Search.OverallTimeoutMs = 8000
	}
	if cfg.Search.RRFK == 0 {
		cfg.Search.RRFK = 60
	}
	if cfg.Search.TitleBoost == 0 {
		cfg.Search.TitleBoost = 2.0
	}
	cfg.Ranking.ApplyDefaults()
	if cfg.Lexical == (lexical.Params{}) {
		cfg.Lexical = lexical.DefaultParams()
	}
	def := filter.DefaultConfig()
	if len(cfg.Filter.ArchivedLabels) == 0 {
		cfg.Filter.ArchivedLabels = def.ArchivedLabels
	}
	if len(cfg.Filter.MeetingNotesLabels) == 0 {
		cfg.Filter.MeetingNotesLabels = def.MeetingNotesLabels
	}
	if cfg.Filter.MinContentRunes == 0 {
		cfg.Filter.MinContentRunes = def.MinContentRunes
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 512
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
}
