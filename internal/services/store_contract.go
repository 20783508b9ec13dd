package services

import (
	"context"

	"github.com/terraincognita07/platewise/internal/store"
)

type DocumentStore interface {
	Get(ctx context.Context, path string) (store.Document, error)
	List(ctx context.Context, collection string) ([]store.Document, error)
	Create(ctx context.Context, path string, fields store.Fields) (bool, error)
	Set(ctx context.Context, path string, fields store.Fields, merge bool) error
	Batch(ctx context.Context, writes []store.Write) error
}

type ChangeWatcher interface {
	Watch(prefix string) *store.Watcher
}
