package heapdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogTestFile(t *testing.T, dir, name string) *HeapFile {
	t.Helper()
	desc := NewTupleDesc([]DBType{IntType, StringType}, []string{"id", "name"})
	file, err := NewHeapFile(filepath.Join(dir, name), desc)
	require.NoError(t, err)
	return file
}

func TestCatalogAddAndLookup(t *testing.T) {
	dir := t.TempDir()
	cat := NewCatalog()
	file := newCatalogTestFile(t, dir, "students.dat")
	cat.AddTable(file, "students", "id")

	id, err := cat.GetTableID("students")
	require.NoError(t, err)
	assert.Equal(t, file.TableID(), id)

	got, err := cat.GetDBFile(id)
	require.NoError(t, err)
	assert.Same(t, file, got)

	desc, err := cat.GetTupleDesc(id)
	require.NoError(t, err)
	assert.True(t, desc.Equals(file.Descriptor()))

	pkey, err := cat.GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pkey)

	name, err := cat.TableName(id)
	require.NoError(t, err)
	assert.Equal(t, "students", name)
}

func TestCatalogNoSuchTable(t *testing.T) {
	cat := NewCatalog()

	_, err := cat.GetTableID("ghost")
	require.Error(t, err)
	de, ok := err.(DBError)
	require.True(t, ok)
	assert.Equal(t, NoSuchTable, de.Kind)

	_, err = cat.GetDBFile(999)
	require.Error(t, err)
	de, ok = err.(DBError)
	require.True(t, ok)
	assert.Equal(t, NoSuchTable, de.Kind)
}

func TestCatalogLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.txt")
	content := "" +
		"# a comment line, and a blank line follow\n" +
		"\n" +
		"students.dat students (id int pk, name string)\n" +
		"courses.dat courses (code string, title string)\n"
	require.NoError(t, os.WriteFile(catalogPath, []byte(content), 0644))

	cat := NewCatalog()
	require.NoError(t, cat.LoadCatalogFile(catalogPath))

	sid, err := cat.GetTableID("students")
	require.NoError(t, err)
	pkey, err := cat.GetPrimaryKey(sid)
	require.NoError(t, err)
	assert.Equal(t, "id", pkey)

	sdesc, err := cat.GetTupleDesc(sid)
	require.NoError(t, err)
	assert.Equal(t, 2, sdesc.NumFields())

	cid, err := cat.GetTableID("courses")
	require.NoError(t, err)
	cpkey, err := cat.GetPrimaryKey(cid)
	require.NoError(t, err)
	assert.Equal(t, "", cpkey, "courses declared no primary key")
}

func TestCatalogLoadCatalogFileMalformed(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(catalogPath, []byte("students.dat students id int, name string\n"), 0644))

	cat := NewCatalog()
	err := cat.LoadCatalogFile(catalogPath)
	require.Error(t, err)
	de, ok := err.(DBError)
	require.True(t, ok)
	assert.Equal(t, MalformedCatalog, de.Kind)
}

func TestCatalogAddTableReplacesByName(t *testing.T) {
	dir := t.TempDir()
	cat := NewCatalog()
	f1 := newCatalogTestFile(t, dir, "a.dat")
	f2 := newCatalogTestFile(t, dir, "b.dat")

	cat.AddTable(f1, "t", "")
	cat.AddTable(f2, "t", "")

	id, err := cat.GetTableID("t")
	require.NoError(t, err)
	assert.Equal(t, f2.TableID(), id, "AddTable should replace the prior registration under the same name")
}
