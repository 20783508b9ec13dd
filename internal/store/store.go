package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrUnavailable   = errors.New("store unavailable")
	ErrInvalidPath   = errors.New("invalid document path")
	ErrInvalidFields = errors.New("invalid document fields")
	ErrInvalidWrite  = errors.New("invalid write operation")
)

type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store clock when the write is applied.
var ServerTimestamp = serverTimestamp{}

type Document struct {
	Path      string
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (document Document) ID() string {
	return documentID(document.Path)
}

type WriteOp int

const (
	OpSet WriteOp = iota
	OpMerge
	OpDelete
	// OpUpdate merges into an existing document and fails with ErrNotFound
	// when the document is absent.
	OpUpdate
)

type Write struct {
	Path   string
	Op     WriteOp
	Fields Fields
}

func SetWrite(path string, fields Fields) Write {
	return Write{Path: path, Op: OpSet, Fields: fields}
}

func MergeWrite(path string, fields Fields) Write {
	return Write{Path: path, Op: OpMerge, Fields: fields}
}

func UpdateWrite(path string, fields Fields) Write {
	return Write{Path: path, Op: OpUpdate, Fields: fields}
}

func DeleteWrite(path string) Write {
	return Write{Path: path, Op: OpDelete}
}

type documentRow struct {
	Path         string `gorm:"column:path;primaryKey"`
	Collection   string `gorm:"column:collection"`
	Data         string `gorm:"column:data"`
	CreatedNanos int64  `gorm:"column:created_at"`
	UpdatedNanos int64  `gorm:"column:updated_at"`
}

func (documentRow) TableName() string {
	return "documents"
}

func newDocumentRow(path string, data []byte, stamp time.Time) documentRow {
	return documentRow{
		Path:         path,
		Collection:   parentCollection(path),
		Data:         string(data),
		CreatedNanos: stamp.UnixNano(),
		UpdatedNanos: stamp.UnixNano(),
	}
}

func (row documentRow) document() Document {
	return Document{
		Path:      row.Path,
		Data:      []byte(row.Data),
		CreatedAt: time.Unix(0, row.CreatedNanos).UTC(),
		UpdatedAt: time.Unix(0, row.UpdatedNanos).UTC(),
	}
}

// Relay forwards committed change paths to other processes.
type Relay interface {
	Publish(ctx context.Context, paths []string) error
}

type Store struct {
	database *gorm.DB
	hub      *hub
	relay    Relay
	logger   zerolog.Logger
	now      func() time.Time

	clockMu   sync.Mutex
	lastStamp int64
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(store *Store) {
		if now != nil {
			store.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(store *Store) {
		store.logger = logger
	}
}

func WithRelay(relay Relay) Option {
	return func(store *Store) {
		store.relay = relay
	}
}

func New(database *gorm.DB, options ...Option) *Store {
	store := &Store{
		database: database,
		hub:      newHub(),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, option := range options {
		option(store)
	}
	return store
}

func (store *Store) Get(ctx context.Context, path string) (Document, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return Document{}, err
	}

	row := documentRow{}
	result := store.database.WithContext(ctx).Where("path = ?", path).Limit(1).Find(&row)
	if result.Error != nil {
		return Document{}, unavailable(result.Error)
	}
	if result.RowsAffected == 0 {
		return Document{}, ErrNotFound
	}
	return row.document(), nil
}

// List returns the direct children of a collection, oldest first.
func (store *Store) List(ctx context.Context, collection string) ([]Document, error) {
	if collection == "" {
		return nil, ErrInvalidPath
	}

	rows := make([]documentRow, 0)
	if err := store.database.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC, path ASC").
		Find(&rows).Error; err != nil {
		return nil, unavailable(err)
	}

	documents := make([]Document, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, row.document())
	}
	return documents, nil
}

// Create inserts the document only when no document exists at path. The
// returned flag reports whether this call created it.
func (store *Store) Create(ctx context.Context, path string, fields Fields) (bool, error) {
	if err := ValidateDocumentPath(path); err != nil {
		return false, err
	}
	stamp := store.stamp()
	data, err := encodeFields(fields, stamp)
	if err != nil {
		return false, err
	}

	row := newDocumentRow(path, data, stamp)
	result := store.database.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return false, unavailable(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	store.publish(ctx, []string{path})
	return true, nil
}

func (store *Store) Set(ctx context.Context, path string, fields Fields, merge bool) error {
	if merge {
		return store.Batch(ctx, []Write{MergeWrite(path, fields)})
	}
	return store.Batch(ctx, []Write{SetWrite(path, fields)})
}

// Update merges fields into an existing document. It returns ErrNotFound
// instead of creating the document when nothing exists at path.
func (store *Store) Update(ctx context.Context, path string, fields Fields) error {
	return store.Batch(ctx, []Write{UpdateWrite(path, fields)})
}

func (store *Store) Delete(ctx context.Context, path string) error {
	return store.Batch(ctx, []Write{DeleteWrite(path)})
}

type preparedWrite struct {
	path   string
	op     WriteOp
	values map[string]any
	data   []byte
}

// Batch applies every write in one transaction.
func (store *Store) Batch(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	stamp := store.stamp()
	prepared := make([]preparedWrite, 0, len(writes))
	for _, write := range writes {
		if err := ValidateDocumentPath(write.Path); err != nil {
			return fmt.Errorf("%w: %q", err, write.Path)
		}
		item := preparedWrite{path: write.Path, op: write.Op}
		switch write.Op {
		case OpDelete:
		case OpSet, OpMerge, OpUpdate:
			values := resolveFields(write.Fields, stamp)
			data, err := json.Marshal(values)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidFields, err)
			}
			item.values = values
			item.data = data
		default:
			return fmt.Errorf("%w: %d", ErrInvalidWrite, write.Op)
		}
		prepared = append(prepared, item)
	}

	err := store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range prepared {
			if err := applyWrite(tx, item, stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return unavailable(err)
	}

	paths := make([]string, 0, len(prepared))
	for _, item := range prepared {
		paths = append(paths, item.path)
	}
	store.publish(ctx, paths)
	return nil
}

// Watch subscribes to committed writes at or below prefix.
func (store *Store) Watch(prefix string) *Watcher {
	return store.hub.subscribe(prefix)
}

func applyWrite(tx *gorm.DB, item preparedWrite, stamp time.Time) error {
	switch item.op {
	case OpDelete:
		return tx.Where("path = ?", item.path).Delete(&documentRow{}).Error
	case OpSet:
		row := newDocumentRow(item.path, item.data, stamp)
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&row).Error
	case OpMerge, OpUpdate:
		existing := documentRow{}
		result := tx.Where("path = ?", item.path).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if item.op == OpUpdate {
				return fmt.Errorf("%w: %q", ErrNotFound, item.path)
			}
			row := newDocumentRow(item.path, item.data, stamp)
			return tx.Create(&row).Error
		}

		merged := decodeObject([]byte(existing.Data))
		for key, value := range item.values {
			merged[key] = value
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return tx.Model(&documentRow{}).
			Where("path = ?", item.path).
			Updates(map[string]any{"data": string(data), "updated_at": stamp.UnixNano()}).Error
	default:
		return ErrInvalidWrite
	}
}

func (store *Store) publish(ctx context.Context, paths []string) {
	store.hub.notify(paths)
	if store.relay == nil {
		return
	}
	if err := store.relay.Publish(context.WithoutCancel(ctx), paths); err != nil {
		store.logger.Warn().Err(err).Strs("paths", paths).Msg("change relay publish failed")
	}
}

// stamp returns a strictly increasing write time so creation order survives
// writes that land within the same clock tick.
func (store *Store) stamp() time.Time {
	store.clockMu.Lock()
	defer store.clockMu.Unlock()

	next := store.now().UTC().UnixNano()
	if next <= store.lastStamp {
		next = store.lastStamp + 1
	}
	store.lastStamp = next
	return time.Unix(0, next).UTC()
}

func encodeFields(fields Fields, stamp time.Time) ([]byte, error) {
	data, err := json.Marshal(resolveFields(fields, stamp))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFields, err)
	}
	return data, nil
}

func resolveFields(fields Fields, stamp time.Time) map[string]any {
	resolved := make(map[string]any, len(fields))
	for key, value := range fields {
		resolved[key] = resolveValue(value, stamp)
	}
	return resolved
}

func resolveValue(value any, stamp time.Time) any {
	switch typed := value.(type) {
	case serverTimestamp:
		return stamp
	case Fields:
		return resolveFields(typed, stamp)
	case map[string]any:
		return resolveFields(typed, stamp)
	default:
		return value
	}
}

func decodeObject(data []byte) map[string]any {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	object := make(map[string]any)
	if err := decoder.Decode(&object); err != nil || object == nil {
		return make(map[string]any)
	}
	return object
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
