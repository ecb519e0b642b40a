// Package lock implements the advisory, repository-backed distributed
// lock of spec.md §4.3: check/acquire/release over a Repository, with
// a bounded-attempt linear-backoff decorator for acquire.
package lock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
	"github.com/nprokhorov/sgdns-discovery/internal/repository"
)

// DistributedLock is the interface the lifecycle and reconciliation
// coordinators consume.
type DistributedLock interface {
	// Check reports whether id is currently held.
	Check(ctx context.Context, id string) (bool, error)

	// Acquire attempts a single, non-retrying acquire of id.
	Acquire(ctx context.Context, id string) (bool, error)

	// Release drops the hold on id. Releasing an unheld id is not an
	// error.
	Release(ctx context.Context, id string) error
}

// token is the value stored at a lock row (spec.md §6 "Lock rows").
// HolderToken identifies the specific acquire call that created the
// row, distinct from the acquirer's identity, so operators can tell
// two overlapping acquire attempts on the same id apart in the lock row
// itself.
type token struct {
	ResourceID  string `json:"resource_id"`
	Timestamp   int64  `json:"timestamp"`
	HolderToken string `json:"holder_token"`
}

// RepositoryLock is the Repository-backed DistributedLock of spec.md
// §4.3: acquire maps to a conditional create, release to a delete.
type RepositoryLock struct {
	repo repository.Repository
	now  func() time.Time
}

func New(repo repository.Repository) *RepositoryLock {
	return &RepositoryLock{repo: repo, now: time.Now}
}

func (l *RepositoryLock) Check(ctx context.Context, id string) (bool, error) {
	v, err := l.repo.Get(ctx, id)
	if err != nil {
		return false, domain.NewProviderError("lock", "check", id, err)
	}
	return v != nil, nil
}

func (l *RepositoryLock) Acquire(ctx context.Context, id string) (bool, error) {
	payload, err := json.Marshal(token{ResourceID: id, Timestamp: l.now().Unix(), HolderToken: uuid.New().String()})
	if err != nil {
		return false, domain.NewProviderError("lock", "acquire", id, err)
	}
	ok, err := l.repo.Create(ctx, id, payload)
	if err != nil {
		return false, domain.NewProviderError("lock", "acquire", id, err)
	}
	return ok, nil
}

func (l *RepositoryLock) Release(ctx context.Context, id string) error {
	if _, err := l.repo.Delete(ctx, id); err != nil {
		return domain.NewProviderError("lock", "release", id, err)
	}
	return nil
}
