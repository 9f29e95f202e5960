package heapdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// tableEntry is one table's catalog record: its backing file, declared
// primary key field name (empty if none), and the name it was registered
// under.
type tableEntry struct {
	name string
	file *HeapFile
	pkey string
}

// Catalog maps table names and tableIds to their backing HeapFiles
// (spec.md §4.3). Unlike the teacher's global lab1_query.go lookup
// helpers, Catalog is an explicit handle threaded into BufferPool's
// constructor rather than a package-level variable.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[int]*tableEntry
	byName map[string]int
}

// NewCatalog constructs an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[int]*tableEntry),
		byName: make(map[string]int),
	}
}

// AddTable registers file under name with optional primary key field pkey
// (empty string for none). Re-registering a name replaces the prior entry,
// matching the teacher's catalog-load-on-every-startup convention.
func (c *Catalog) AddTable(file *HeapFile, name string, pkey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[file.TableID()] = &tableEntry{name: name, file: file, pkey: pkey}
	c.byName[name] = file.TableID()
}

// GetTableID resolves a table name to its tableId.
func (c *Catalog) GetTableID(name string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	if !ok {
		return 0, newErr(NoSuchTable, "no table named %q", name)
	}
	return id, nil
}

// GetDBFile resolves a tableId to its backing HeapFile.
func (c *Catalog) GetDBFile(tableID int) (*HeapFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.byID[tableID]
	if !ok {
		return nil, newErr(NoSuchTable, "no table with id %d", tableID)
	}
	return entry.file, nil
}

// GetTupleDesc resolves a tableId to its schema.
func (c *Catalog) GetTupleDesc(tableID int) (*TupleDesc, error) {
	file, err := c.GetDBFile(tableID)
	if err != nil {
		return nil, err
	}
	return file.Descriptor(), nil
}

// GetPrimaryKey returns the declared primary-key field name for tableID,
// or "" if none was declared.
func (c *Catalog) GetPrimaryKey(tableID int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.byID[tableID]
	if !ok {
		return "", newErr(NoSuchTable, "no table with id %d", tableID)
	}
	return entry.pkey, nil
}

// TableName returns the name a table was registered under.
func (c *Catalog) TableName(tableID int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.byID[tableID]
	if !ok {
		return "", newErr(NoSuchTable, "no table with id %d", tableID)
	}
	return entry.name, nil
}

// LoadCatalogFile parses a catalog description file and registers every
// table it names, per spec.md §6: each non-blank, non-comment line has the
// shape
//
//	path tableName (colName colType, colName colType pk, ...)
//
// colType is "int" or "string"; a trailing "pk" token after a column marks
// it as the table's primary key. Lines starting with '#' are comments.
// Relative paths are resolved against dir (the catalog file's directory).
func (c *Catalog) LoadCatalogFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newErr(IoError, "open catalog %s: %v", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.loadCatalogLine(dir, line); err != nil {
			return newErr(MalformedCatalog, "catalog line %d: %v", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return newErr(IoError, "reading catalog %s: %v", path, err)
	}
	return nil
}

func (c *Catalog) loadCatalogLine(dir, line string) error {
	open := strings.Index(line, "(")
	close := strings.LastIndex(line, ")")
	if open < 0 || close < open {
		return fmt.Errorf("expected \"path name (col type, ...)\", got %q", line)
	}
	head := strings.Fields(line[:open])
	if len(head) != 2 {
		return fmt.Errorf("expected \"path name\", got %q", line[:open])
	}
	relPath, tableName := head[0], head[1]
	path := relPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, relPath)
	}

	colSpecs := strings.Split(line[open+1:close], ",")
	types := make([]DBType, 0, len(colSpecs))
	names := make([]string, 0, len(colSpecs))
	pkey := ""
	for _, spec := range colSpecs {
		fields := strings.Fields(spec)
		if len(fields) < 2 {
			return fmt.Errorf("malformed column spec %q", spec)
		}
		name, kind := fields[0], fields[1]
		var ty DBType
		switch strings.ToLower(kind) {
		case "int", "int32":
			ty = IntType
		case "string":
			ty = StringType
		default:
			return fmt.Errorf("unknown column type %q", kind)
		}
		names = append(names, name)
		types = append(types, ty)
		if len(fields) >= 3 && strings.EqualFold(fields[2], "pk") {
			pkey = name
		}
	}

	desc := NewTupleDesc(types, names)
	file, err := NewHeapFile(path, desc)
	if err != nil {
		return err
	}
	c.AddTable(file, tableName, pkey)
	return nil
}
