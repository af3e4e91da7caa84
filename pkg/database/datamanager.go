package database

import (
	"container/list"
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataManagerOptions contains configuration for a DataManager
type DataManagerOptions struct {
	// Cache enables the shared LRU cache for Get. Collections whose reads
	// must always be fresh leave it off.
	Cache        bool
	MaxCacheSize int
	// QueueOffline queues Set, Insert and Delete while the database is down
	// instead of failing them.
	QueueOffline bool
	Timeout      time.Duration
}

// CacheManager provides shared caching across DataManagers
type CacheManager struct {
	cache     map[string]*list.Element
	cacheList *list.List
	mu        sync.Mutex
}

type cacheEntry struct {
	key   string
	value interface{}
}

// globalCacheManager is shared across all DataManager instances
var globalCacheManager = newCacheManager()

func newCacheManager() *CacheManager {
	return &CacheManager{
		cache:     make(map[string]*list.Element),
		cacheList: list.New(),
	}
}

func (cm *CacheManager) get(key string) (interface{}, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	elem, ok := cm.cache[key]
	if !ok {
		return nil, false
	}
	cm.cacheList.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (cm *CacheManager) put(key string, value interface{}, maxSize int) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	entry := &cacheEntry{key: key, value: value}
	if elem, ok := cm.cache[key]; ok {
		elem.Value = entry
		cm.cacheList.MoveToFront(elem)
		return
	}
	cm.cache[key] = cm.cacheList.PushFront(entry)

	for maxSize > 0 && cm.cacheList.Len() > maxSize {
		oldest := cm.cacheList.Back()
		delete(cm.cache, oldest.Value.(*cacheEntry).key)
		cm.cacheList.Remove(oldest)
	}
}

func (cm *CacheManager) remove(key string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if elem, ok := cm.cache[key]; ok {
		cm.cacheList.Remove(elem)
		delete(cm.cache, key)
	}
}

func (cm *CacheManager) removePrefix(prefix string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for key, elem := range cm.cache {
		if strings.HasPrefix(key, prefix) {
			cm.cacheList.Remove(elem)
			delete(cm.cache, key)
		}
	}
}

func (cm *CacheManager) len() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.cacheList.Len()
}

// DataManager provides typed, optionally cached access to a collection
type DataManager[T any] struct {
	name       string
	dbInstance *Database
	options    DataManagerOptions
}

// DefaultDataManagerOptions returns default options for DataManager
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
		Timeout:      5 * time.Second,
	}
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
		if dmOptions.Timeout <= 0 {
			dmOptions.Timeout = 5 * time.Second
		}
	}

	return &DataManager[T]{
		name:       collectionName,
		dbInstance: db,
		options:    dmOptions,
	}
}

// Name returns the collection name
func (dm *DataManager[T]) Name() string {
	return dm.name
}

// generateCacheKey creates a unique, deterministic key from a query.
// Keys are sorted so map iteration order does not matter.
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, query[k]))
	}

	return fmt.Sprintf("%s:{%s}", dm.name, strings.Join(parts, ","))
}

// collection returns the live collection or an offline error
func (dm *DataManager[T]) collection(op string) (*mongo.Collection, error) {
	if !dm.dbInstance.Connected() {
		return nil, errors.Upstream(op, ErrOffline)
	}
	col := dm.dbInstance.GetCollection(dm.name)
	if col == nil {
		return nil, errors.Upstream(op, ErrOffline)
	}
	return col, nil
}

func (dm *DataManager[T]) queue(op QueuedOperation) bool {
	if !dm.options.QueueOffline || dm.dbInstance == nil {
		return false
	}
	logger.Warn(fmt.Sprintf("DB offline. Queuing %s for '%s'", op.Operation, dm.name), "DataManager")
	dm.dbInstance.AddToWriteQueue(op)
	return true
}

// Get retrieves one document. It returns nil, nil when nothing matches.
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	const op = "DataManager.Get"
	cacheKey := dm.generateCacheKey(query)

	if dm.options.Cache {
		if v, ok := globalCacheManager.get(cacheKey); ok {
			copied := *v.(*T)
			return &copied, nil
		}
	}

	col, err := dm.collection(op)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	var result T
	if err := col.FindOne(ctx, query).Decode(&result); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Warn(fmt.Sprintf("Failed to read from the DB (%s): %v", dm.name, err), "DataManager")
		return nil, errors.Internal(op, err)
	}

	if dm.options.Cache {
		cached := result
		globalCacheManager.put(cacheKey, &cached, dm.options.MaxCacheSize)
	}
	return &result, nil
}

// FindOptions narrows a Find
type FindOptions struct {
	Sort  bson.D
	Limit int64
}

// Find retrieves all documents matching a query, always from the database
func (dm *DataManager[T]) Find(ctx context.Context, query bson.M, fo ...FindOptions) ([]T, error) {
	const op = "DataManager.Find"
	col, err := dm.collection(op)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if len(fo) > 0 {
		if fo[0].Sort != nil {
			opts.SetSort(fo[0].Sort)
		}
		if fo[0].Limit > 0 {
			opts.SetLimit(fo[0].Limit)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*dm.options.Timeout)
	defer cancel()

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Internal(op, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	results := make([]T, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, errors.Internal(op, err)
	}
	return results, nil
}

// Count counts documents matching a query
func (dm *DataManager[T]) Count(ctx context.Context, query bson.M) (int64, error) {
	const op = "DataManager.Count"
	col, err := dm.collection(op)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	n, err := col.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	return n, nil
}

// Set upserts the fields of data into the document matching query
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) (*T, error) {
	const op = "DataManager.Set"
	cacheKey := dm.generateCacheKey(query)

	col, err := dm.collection(op)
	if err != nil {
		globalCacheManager.remove(cacheKey)
		if dm.queue(QueuedOperation{CollectionName: dm.name, Query: query, Operation: OpSet, Data: data}) {
			return nil, nil
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	if err := col.FindOneAndUpdate(ctx, query, bson.M{"$set": data}, opts).Decode(&result); err != nil {
		globalCacheManager.remove(cacheKey)
		logger.Error(fmt.Sprintf("Error in 'set' on %s: %v", dm.name, err), "DataManager")
		return nil, errors.Internal(op, err)
	}

	if dm.options.Cache {
		cached := result
		globalCacheManager.put(cacheKey, &cached, dm.options.MaxCacheSize)
	}
	return &result, nil
}

// SetOnInsert creates the document only when nothing matches query. It
// reports whether a document was created.
func (dm *DataManager[T]) SetOnInsert(ctx context.Context, query bson.M, data interface{}) (bool, error) {
	const op = "DataManager.SetOnInsert"
	col, err := dm.collection(op)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	res, err := col.UpdateOne(ctx, query, bson.M{"$setOnInsert": data}, options.Update().SetUpsert(true))
	if err != nil {
		return false, errors.Internal(op, err)
	}
	return res.UpsertedCount > 0, nil
}

// Insert adds a new document
func (dm *DataManager[T]) Insert(ctx context.Context, doc *T) error {
	const op = "DataManager.Insert"
	col, err := dm.collection(op)
	if err != nil {
		if dm.queue(QueuedOperation{CollectionName: dm.name, Operation: OpInsert, Data: doc}) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	if _, err := col.InsertOne(ctx, doc); err != nil {
		return errors.Internal(op, err)
	}
	return nil
}

// Delete removes the first document matching query and reports whether one
// was removed.
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) (bool, error) {
	const op = "DataManager.Delete"
	globalCacheManager.remove(dm.generateCacheKey(query))

	col, err := dm.collection(op)
	if err != nil {
		if dm.queue(QueuedOperation{CollectionName: dm.name, Query: query, Operation: OpDelete}) {
			return false, nil
		}
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, query)
	if err != nil {
		logger.Error(fmt.Sprintf("Error in 'delete' on %s: %v", dm.name, err), "DataManager")
		return false, errors.Internal(op, err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany removes every document matching query and drops the
// collection's cached entries.
func (dm *DataManager[T]) DeleteMany(ctx context.Context, query bson.M) (int64, error) {
	const op = "DataManager.DeleteMany"
	globalCacheManager.removePrefix(dm.name + ":")

	col, err := dm.collection(op)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*dm.options.Timeout)
	defer cancel()

	res, err := col.DeleteMany(ctx, query)
	if err != nil {
		return 0, errors.Internal(op, err)
	}
	return res.DeletedCount, nil
}

// FindOneAndDelete removes and returns the first document matching query in
// sort order. It returns nil, nil when nothing matches. A nil sortBy keeps the
// server's order.
func (dm *DataManager[T]) FindOneAndDelete(ctx context.Context, query bson.M, sortBy bson.D) (*T, error) {
	const op = "DataManager.FindOneAndDelete"
	col, err := dm.collection(op)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, dm.options.Timeout)
	defer cancel()

	opts := options.FindOneAndDelete()
	if len(sortBy) > 0 {
		opts.SetSort(sortBy)
	}

	var result T
	err = col.FindOneAndDelete(ctx, query, opts).Decode(&result)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Internal(op, err)
	}
	// the removed document may be cached under a narrower query
	globalCacheManager.removePrefix(dm.name + ":")
	return &result, nil
}

// PrimeCache logs that the cache is ready (caches are filled on demand)
func (dm *DataManager[T]) PrimeCache() {
	if !dm.options.Cache {
		return
	}
	logger.System(fmt.Sprintf("Cache for '%s' ready (max size: %d). Filled on demand.", dm.name, dm.options.MaxCacheSize), "DataManager")
}
