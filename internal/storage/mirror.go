package storage

import (
	"context"
	"errors"

	"contracthub/internal/contractid"
	blobrepo "contracthub/internal/gateway/repository/blob"

	"github.com/charmbracelet/log"
)

// MirroredStore reads through a blob mirror before going upstream and
// writes fetched documents back. Content under a CID never changes, so a
// mirrored copy is always valid.
type MirroredStore struct {
	upstream ContentStore
	mirror   blobrepo.Store
	logger   *log.Logger
}

func NewMirroredStore(upstream ContentStore, mirror blobrepo.Store, logger *log.Logger) *MirroredStore {
	if logger == nil {
		logger = log.Default()
	}
	return &MirroredStore{upstream: upstream, mirror: mirror, logger: logger}
}

func (s *MirroredStore) Fetch(ctx context.Context, uri string) ([]byte, error) {
	c, path, err := contractid.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	root := c.String()
	if s.mirror != nil {
		raw, err := s.mirror.Get(ctx, root, path)
		switch {
		case err == nil:
			return raw, nil
		case !errors.Is(err, blobrepo.ErrNotFound):
			s.logger.Warn("blob mirror read failed", "root", root, "path", path, "err", err)
		}
	}

	raw, err := s.upstream.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	if s.mirror != nil {
		if err := s.mirror.Put(ctx, root, path, raw); err != nil {
			s.logger.Warn("blob mirror write failed", "root", root, "path", path, "err", err)
		}
	}
	return raw, nil
}
