package catalog

import (
	"fmt"
	"log"
	"sync"

	"minidb/buffer"
	"minidb/catalog/db_types"
	"minidb/common"
	"minidb/disk/structures"
	"minidb/hashindex"
)

type TableInfo struct {
	Schema  Schema
	Name    string
	Heap    *structures.TableHeap
	OID     TableOID
	catalog *InMemCatalog
}

type IndexInfo struct {
	Index   *hashindex.Table
	catalog *InMemCatalog

	IndexName string
	OID       IndexOID
	IsUnique  bool

	// Schema is the key schema: the indexed columns, plus two rid columns
	// when the index is non-unique. BareSchema omits the rid columns.
	Schema        Schema
	BareSchema    Schema
	TableName     string
	ColumnIndexes []int
}

type TableOID uint32
type IndexOID uint32

const NullTableOID TableOID = 0
const NullIndexOID IndexOID = 0

type Catalog interface {
	CreateTable(tableName string, schema Schema) *TableInfo
	GetTable(name string) *TableInfo
	GetTableByOID(oid TableOID) *TableInfo

	CreateIndex(indexName string, tableName string, columnIndexes []int, isUnique bool) (*IndexInfo, error)
	GetIndex(indexName, tableName string) *IndexInfo
	GetIndexByOID(indexOID IndexOID) *IndexInfo
	GetTableIndexes(tableName string) []*IndexInfo
}

// InMemCatalog keeps table and index metadata in memory while the data
// itself (table heaps, hash index directory/bucket pages) lives in pool.
type InMemCatalog struct {
	tables     map[TableOID]*TableInfo
	tableNames map[string]TableOID

	indexes map[IndexOID]*IndexInfo

	// indexNames maps tableName => indexName => indexOID
	indexNames map[string]map[string]IndexOID

	nextTableOID TableOID
	tableOIDLock sync.Mutex

	nextIndexOID IndexOID
	indexOIDLock sync.Mutex

	// indexBuildLock serializes CreateIndex calls per table name, so two
	// callers racing to define an index on the same table can't both pass
	// the "not already defined" check and then stomp each other's writes
	// to indexNames/indexes.
	indexBuildLock common.KeyMutex[string]

	pool *buffer.Manager
}

func NewCatalog(pool *buffer.Manager) Catalog {
	return &InMemCatalog{
		tables:     make(map[TableOID]*TableInfo),
		tableNames: make(map[string]TableOID),
		indexes:    make(map[IndexOID]*IndexInfo),
		indexNames: make(map[string]map[string]IndexOID),
		pool:       pool,
	}
}

func (c *InMemCatalog) CreateTable(tableName string, schema Schema) *TableInfo {
	if c.tableNames[tableName] != NullTableOID {
		return nil
	}

	heap, err := structures.NewTableHeap(c.pool)
	if err != nil {
		log.Print(err)
		return nil
	}

	tableOID := c.getNextTableOID()
	info := TableInfo{
		Schema:  schema,
		Name:    tableName,
		Heap:    heap,
		OID:     tableOID,
		catalog: c,
	}

	c.tables[tableOID] = &info
	c.tableNames[tableName] = tableOID
	c.indexNames[tableName] = map[string]IndexOID{}
	return &info
}

func (c *InMemCatalog) GetTable(name string) *TableInfo {
	oid, ok := c.tableNames[name]
	if !ok {
		return nil
	}
	return c.tables[oid]
}

func (c *InMemCatalog) GetTableByOID(oid TableOID) *TableInfo {
	return c.tables[oid]
}

// CreateIndex builds a hash index over tableName's columnIndexes, scanning
// every row already in the table heap to populate it. For a non-unique
// index the tuple's rid is folded into the key so distinct rows with equal
// indexed values don't collide.
func (c *InMemCatalog) CreateIndex(indexName string, tableName string, columnIndexes []int, isUnique bool) (*IndexInfo, error) {
	unlock := c.indexBuildLock.Lock(tableName)
	defer unlock()

	if c.tableNames[tableName] == NullTableOID {
		return nil, fmt.Errorf("tried to create an index on a nonexistent table: %v", tableName)
	}

	indexesOnTable := c.indexNames[tableName]
	if indexesOnTable[indexName] != NullIndexOID {
		return nil, fmt.Errorf("an index with the same name is already defined on the table. table: %v, index: %v", tableName, indexName)
	}

	table := c.GetTable(tableName)
	tableCols := table.Schema.GetColumns()
	indexCols := make([]Column, 0, len(columnIndexes))
	for _, idx := range columnIndexes {
		indexCols = append(indexCols, tableCols[idx])
	}
	bareSchema := NewSchema(append([]Column{}, indexCols...))

	if !isUnique {
		indexCols = append(indexCols,
			NewColumn("page_id", db_types.IntegerTypeID),
			NewColumn("slot_idx", db_types.IntegerTypeID))
	}
	keySchema := NewSchema(indexCols)

	index := hashindex.NewTable(c.pool)
	it := structures.NewTableIterator(table.Heap)
	for {
		row, err := it.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		tuple := CastRowAsTuple(row)
		key, err := buildIndexKey(tuple, table.Schema, columnIndexes, row.Rid, isUnique)
		if err != nil {
			return nil, err
		}
		if err := index.Insert(key, row.Rid); err != nil {
			return nil, err
		}
	}

	oid := c.getNextIndexOID()
	info := IndexInfo{
		Schema:        keySchema,
		BareSchema:    bareSchema,
		IndexName:     indexName,
		TableName:     tableName,
		OID:           oid,
		Index:         index,
		catalog:       c,
		ColumnIndexes: columnIndexes,
		IsUnique:      isUnique,
	}
	c.indexes[oid] = &info
	indexesOnTable[indexName] = oid
	return &info, nil
}

func (c *InMemCatalog) GetIndex(indexName, tableName string) *IndexInfo {
	oid := c.indexNames[tableName][indexName]
	if oid == NullIndexOID {
		return nil
	}
	return c.indexes[oid]
}

func (c *InMemCatalog) GetIndexByOID(indexOID IndexOID) *IndexInfo {
	return c.indexes[indexOID]
}

func (c *InMemCatalog) GetTableIndexes(tableName string) []*IndexInfo {
	res := make([]*IndexInfo, 0, len(c.indexNames[tableName]))
	for _, oid := range c.indexNames[tableName] {
		res = append(res, c.indexes[oid])
	}
	return res
}

func (c *InMemCatalog) getNextTableOID() TableOID {
	c.tableOIDLock.Lock()
	defer c.tableOIDLock.Unlock()
	c.nextTableOID++
	return c.nextTableOID
}

func (c *InMemCatalog) getNextIndexOID() IndexOID {
	c.indexOIDLock.Lock()
	defer c.indexOIDLock.Unlock()
	c.nextIndexOID++
	return c.nextIndexOID
}
