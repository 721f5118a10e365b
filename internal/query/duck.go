package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	"github.com/media-library/backend/internal/models"
)

// DuckEngine evaluates queries as SQL over an in-memory DuckDB database.
// Each query loads the scanned files into its own table with the Appender
// API and drops it afterwards, so no state survives between requests.
type DuckEngine struct {
	db *sql.DB
}

// NewDuckEngine opens an in-memory DuckDB database.
func NewDuckEngine(threads int) (*DuckEngine, error) {
	if threads <= 0 {
		threads = 1
	}
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA threads=%d", threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}
	return &DuckEngine{db: sql.OpenDB(connector)}, nil
}

// Name identifies the engine in logs and metrics.
func (e *DuckEngine) Name() string {
	return EngineDuckDB
}

// Close releases the database.
func (e *DuckEngine) Close() error {
	return e.db.Close()
}

// Query implements Engine.
func (e *DuckEngine) Query(ctx context.Context, files []models.IndexedFile, q models.QueryState, perPage int) (*models.PageResult, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	table := "files_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE %s (
			url      VARCHAR NOT NULL,
			name     VARCHAR NOT NULL,
			name_key VARCHAR NOT NULL,
			type     VARCHAR NOT NULL,
			size     UBIGINT NOT NULL,
			modified VARCHAR NOT NULL,
			folder   VARCHAR NOT NULL,
			mtime    BIGINT NOT NULL,
			seq      BIGINT NOT NULL
		)`, table)); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	defer conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+table)

	if err := appendFiles(conn, table, files); err != nil {
		return nil, err
	}

	folders, err := e.folders(ctx, conn, table)
	if err != nil {
		return nil, err
	}

	where, args := whereClause(q)

	var total int
	if err := conn.QueryRowContext(ctx, "SELECT count(*) FROM "+table+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	pages := PageCount(total, perPage)
	page := ClampPage(q.Page, pages)

	rows, err := conn.QueryContext(ctx, fmt.Sprintf(
		"SELECT url, name, type, size, modified FROM %s%s ORDER BY mtime DESC, seq ASC LIMIT %d OFFSET %d",
		table, where, perPage, (page-1)*perPage,
	), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	out := make([]models.FileEntry, 0, perPage)
	for rows.Next() {
		var f models.FileEntry
		var fileType string
		if err := rows.Scan(&f.URL, &f.Name, &fileType, &f.Size, &f.Modified); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		f.Type = models.FileType(fileType)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PageResult{
		Files:         out,
		Folders:       folders,
		CurrentFolder: q.Folder,
		Total:         total,
		Page:          page,
		Pages:         pages,
	}, nil
}

func appendFiles(conn *sql.Conn, table string, files []models.IndexedFile) error {
	err := conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", table)
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, f := range files {
			err := appender.AppendRow(
				f.URL,
				f.Name,
				strings.ToLower(f.Name),
				string(f.Type),
				f.Size,
				f.Modified,
				f.Folder,
				f.ModTime.UnixNano(),
				int64(f.Seq),
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	return nil
}

func (e *DuckEngine) folders(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, "SELECT DISTINCT folder FROM "+table+" WHERE folder <> '' ORDER BY folder")
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}
	defer rows.Close()

	folders := make([]string, 0)
	for rows.Next() {
		var folder string
		if err := rows.Scan(&folder); err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// whereClause lower-cases the search term in Go so matching agrees with
// MemoryEngine for non-ASCII names.
func whereClause(q models.QueryState) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if q.Folder != "" {
		conds = append(conds, "folder = ?")
		args = append(args, q.Folder)
	}
	if q.Search != "" {
		conds = append(conds, "strpos(name_key, ?) > 0")
		args = append(args, strings.ToLower(q.Search))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
