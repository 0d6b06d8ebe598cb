package repository

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/adapter"
)

// CloudStorage stores each key as the object <prefix><key>.json.
type CloudStorage struct {
	storage adapter.Storage
	prefix  string
}

func NewCloudStorage(s adapter.Storage, prefix string) *CloudStorage {
	return &CloudStorage{storage: s, prefix: prefix}
}

func (o *CloudStorage) objectName(key string) string {
	return o.prefix + key + ".json"
}

func (o *CloudStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	name := o.objectName(key)

	r, err := o.storage.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "no storage object", goerr.V("object", name))
		}
		return nil, goerr.Wrap(err, "failed to open storage object", goerr.V("object", name))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read storage object", goerr.V("object", name))
	}
	return data, nil
}

func (o *CloudStorage) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	name := o.objectName(key)

	w, err := o.storage.Put(ctx, name)
	if err != nil {
		return goerr.Wrap(err, "failed to open storage writer", goerr.V("object", name))
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return goerr.Wrap(err, "failed to write storage object", goerr.V("object", name))
	}
	// the object is committed on Close
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit storage object", goerr.V("object", name))
	}
	return nil
}
