package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
	"github.com/nprokhorov/sgdns-discovery/internal/repository"
)

// document is the KV value shape at db_config_item_key_id (spec.md §6
// "Configuration document").
type document struct {
	Config string `json:"config"`
}

// Resolver caches the decoded desired-state document for the process
// lifetime (spec.md §4.1, §3 "Lifecycle").
type Resolver struct {
	repo    repository.Repository
	key     string
	mu      sync.Mutex
	loaded  bool
	configs []domain.ScalingGroupConfig
}

func NewResolver(repo repository.Repository, key string) *Resolver {
	return &Resolver{repo: repo, key: key}
}

// Configs returns the cached config list, loading and validating it on
// first access.
func (r *Resolver) Configs(ctx context.Context) ([]domain.ScalingGroupConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.configs, nil
	}

	raw, err := r.repo.Get(ctx, r.key)
	if err != nil {
		return nil, domain.NewProviderError("config", "load_document", r.key, err)
	}
	if raw == nil {
		return nil, domain.NewConfigError("load_document", "configuration document not found at "+r.key, nil)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domain.NewConfigError("decode_document", "malformed configuration document", err)
	}
	if doc.Config == "" {
		return nil, domain.NewConfigError("decode_document", "configuration document missing 'config' field", nil)
	}

	decoded, err := base64.StdEncoding.DecodeString(doc.Config)
	if err != nil {
		return nil, domain.NewConfigError("decode_document", "config field is not valid base64", err)
	}

	var configs []domain.ScalingGroupConfig
	if err := json.Unmarshal(decoded, &configs); err != nil {
		return nil, domain.NewConfigError("decode_document", "config field is not a valid JSON array", err)
	}

	for _, cfg := range configs {
		if err := Validate(cfg); err != nil {
			return nil, domain.NewConfigError("validate_document", "scaling group config failed validation", err)
		}
	}

	r.configs = configs
	r.loaded = true
	return r.configs, nil
}
