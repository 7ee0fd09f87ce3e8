// Package geopackage reads and writes model input as GeoPackage layers.
// A GeoPackage is a SQLite database with registered metadata tables; this
// store opens a fresh connection per request so concurrent compute runs
// never share transaction state.
package geopackage

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"aemcore/pkg/tables"
)

// GeoPackage core identification pragmas ("GPKG" in ASCII, format version 1.2).
const (
	applicationID = 1196444487
	userVersion   = 10200
)

// Store exposes the layers of one GeoPackage file.
type Store struct {
	path string
}

// NewStore wraps the GeoPackage at path. The file is opened lazily, per
// request.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the configured GeoPackage path.
func (s *Store) Path() string { return s.path }

func (s *Store) open() (*sql.DB, error) {
	return sql.Open("sqlite", s.path)
}

func (s *Store) openExisting() (*sql.DB, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	return s.open()
}

// ListTableNames returns the registered layer names in registration order.
func (s *Store) ListTableNames() ([]string, error) {
	db, err := s.openExisting()
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT table_name FROM gpkg_contents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list layers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReadTable loads one layer. SQL NULLs become absent cells, the feature id
// column is dropped, and the geometry blob is decoded to a deduplicated
// coordinate sequence with its centroid.
func (s *Store) ReadTable(name string) (tables.Table, error) {
	db, err := s.openExisting()
	if err != nil {
		return tables.Table{}, err
	}
	defer func() { _ = db.Close() }()

	geomColumn, err := geometryColumn(db, name)
	if err != nil {
		return tables.Table{}, err
	}

	rows, err := db.Query(`SELECT * FROM ` + quoteIdent(name))
	if err != nil {
		return tables.Table{}, fmt.Errorf("read layer %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return tables.Table{}, err
	}

	out := tables.Table{Name: name}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return tables.Table{}, err
		}

		row := tables.Row{Cells: make(map[string]tables.Value, len(columns))}
		for i, column := range columns {
			if strings.EqualFold(column, "fid") {
				continue
			}
			if column == geomColumn {
				blob, _ := values[i].([]byte)
				if len(blob) == 0 {
					continue
				}
				coords, err := decodeGeometry(blob)
				if err != nil {
					return tables.Table{}, fmt.Errorf("layer %s: %w", name, err)
				}
				if len(coords) > 0 {
					row.Geometry = tables.DedupCoords(coords)
					row.Centroid = tables.Centroid(row.Geometry)
				}
				continue
			}
			if cell := cellValue(values[i]); !cell.IsNone() {
				row.Cells[column] = cell
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

// WriteLayer creates a new layer holding the table, registering it in the
// GeoPackage metadata. The file and its metadata tables are created when
// missing. Writing over an existing layer name fails.
func (s *Store) WriteLayer(name string, t tables.Table) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := ensureMetadata(db); err != nil {
		return err
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM gpkg_contents WHERE table_name = ?`, name).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("layer %s already exists", name)
	}

	columns := columnOrder(t)
	types := columnTypes(t, columns)

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ddl := make([]string, 0, len(columns)+2)
	ddl = append(ddl, `"fid" INTEGER PRIMARY KEY AUTOINCREMENT`, `"geom" BLOB`)
	for _, column := range columns {
		ddl = append(ddl, fmt.Sprintf("%s %s", quoteIdent(column), types[column]))
	}
	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(ddl, ", "))); err != nil {
		return fmt.Errorf("create layer %s: %w", name, err)
	}

	insertCols := []string{`"geom"`}
	placeholders := []string{"?"}
	for _, column := range columns {
		insertCols = append(insertCols, quoteIdent(column))
		placeholders = append(placeholders, "?")
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(insertCols, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	geomType := "GEOMETRY"
	bounds := [4]sql.NullFloat64{}
	for _, row := range t.Rows {
		args := make([]any, 0, len(columns)+1)
		if len(row.Geometry) > 0 {
			args = append(args, encodeGeometry(row.Geometry, 0))
			geomType = geometryTypeName(row.Geometry)
			growBounds(&bounds, row.Geometry)
		} else {
			args = append(args, nil)
		}
		for _, column := range columns {
			args = append(args, sqlValue(row.Cell(column)))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}

	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	if _, err := tx.Exec(`INSERT INTO gpkg_contents
		(table_name, data_type, identifier, description, last_change, min_x, min_y, max_x, max_y, srs_id)
		VALUES (?, 'features', ?, '', ?, ?, ?, ?, ?, 0)`,
		name, name, now, bounds[0], bounds[1], bounds[2], bounds[3]); err != nil {
		return fmt.Errorf("register layer %s: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO gpkg_geometry_columns
		(table_name, column_name, geometry_type_name, srs_id, z, m)
		VALUES (?, 'geom', ?, 0, 0, 0)`, name, geomType); err != nil {
		return fmt.Errorf("register geometry column for %s: %w", name, err)
	}
	return tx.Commit()
}

func ensureMetadata(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf("PRAGMA application_id = %d", applicationID),
		fmt.Sprintf("PRAGMA user_version = %d", userVersion),
		`CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL,
			srs_id INTEGER PRIMARY KEY,
			organization TEXT NOT NULL,
			organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL,
			description TEXT
		)`,
		`INSERT OR IGNORE INTO gpkg_spatial_ref_sys VALUES
			('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined', NULL),
			('Undefined geographic SRS', 0, 'NONE', 0, 'undefined', NULL),
			('WGS 84', 4326, 'EPSG', 4326, 'GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]', NULL)`,
		`CREATE TABLE IF NOT EXISTS gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_geometry_columns (
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL,
			m TINYINT NOT NULL,
			PRIMARY KEY (table_name, column_name)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure geopackage metadata: %w", err)
		}
	}
	return nil
}

func geometryColumn(db *sql.DB, table string) (string, error) {
	var column string
	err := db.QueryRow(`SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`, table).Scan(&column)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("geometry column for %s: %w", table, err)
	}
	return column, nil
}

func geometryTypeName(coords []tables.Coord) string {
	switch {
	case len(coords) == 1:
		return "POINT"
	case len(coords) >= 4 && coords[0] == coords[len(coords)-1]:
		return "POLYGON"
	default:
		return "LINESTRING"
	}
}

func growBounds(bounds *[4]sql.NullFloat64, coords []tables.Coord) {
	for _, c := range coords {
		if !bounds[0].Valid {
			bounds[0] = sql.NullFloat64{Float64: c.X, Valid: true}
			bounds[1] = sql.NullFloat64{Float64: c.Y, Valid: true}
			bounds[2] = sql.NullFloat64{Float64: c.X, Valid: true}
			bounds[3] = sql.NullFloat64{Float64: c.Y, Valid: true}
			continue
		}
		if c.X < bounds[0].Float64 {
			bounds[0].Float64 = c.X
		}
		if c.Y < bounds[1].Float64 {
			bounds[1].Float64 = c.Y
		}
		if c.X > bounds[2].Float64 {
			bounds[2].Float64 = c.X
		}
		if c.Y > bounds[3].Float64 {
			bounds[3].Float64 = c.Y
		}
	}
}

func columnOrder(t tables.Table) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, row := range t.Rows {
		for name := range row.Cells {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				columns = append(columns, name)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

func columnTypes(t tables.Table, columns []string) map[string]string {
	types := make(map[string]string, len(columns))
	for _, column := range columns {
		sqlType := "REAL"
		for _, row := range t.Rows {
			cell := row.Cell(column)
			if cell.IsText() {
				sqlType = "TEXT"
				break
			}
			if cell.IsBool() {
				sqlType = "INTEGER"
			}
		}
		types[column] = sqlType
	}
	return types
}

func cellValue(raw any) tables.Value {
	switch v := raw.(type) {
	case int64:
		return tables.Int(int(v))
	case float64:
		return tables.Number(v)
	case string:
		return tables.Text(v)
	case bool:
		return tables.Bool(v)
	case []byte:
		return tables.Text(string(v))
	default:
		return tables.None()
	}
}

func sqlValue(v tables.Value) any {
	switch {
	case v.IsNone():
		return nil
	case v.IsText():
		return v.AsText()
	case v.IsBool():
		if v.AsBool() {
			return int64(1)
		}
		return int64(0)
	default:
		return v.Num()
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
