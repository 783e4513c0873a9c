package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/protlab/inteinscan/internal/check"
	"github.com/protlab/inteinscan/internal/criteria"
)

// WriteCriteriaLines batch-inserts criterion lines using the Appender API.
// run tags the rows so multiple scans can share one database.
func (s *Store) WriteCriteriaLines(run string, lines []*check.Line) error {
	if len(lines) == 0 {
		return nil
	}

	appender, cleanup, err := s.newAppender("criteria_lines")
	if err != nil {
		return err
	}
	defer cleanup()

	for _, l := range lines {
		if err := appender.AppendRow(
			run, l.Query, l.Target, l.EValue, int32(l.RegionID),
			int32(l.RS), int32(l.RE),
			l.RegionGood.String(), l.StartGood.String(), l.EndGood.String(), l.ExteinGood.String(),
		); err != nil {
			return fmt.Errorf("append criteria line: %w", err)
		}
	}

	return appender.Flush()
}

// WriteRefinedRegions batch-inserts refined regions.
func (s *Store) WriteRefinedRegions(run string, regions []*criteria.RefinedRegion) error {
	if len(regions) == 0 {
		return nil
	}

	appender, cleanup, err := s.newAppender("refined_regions")
	if err != nil {
		return err
	}
	defer cleanup()

	for _, r := range regions {
		if err := appender.AppendRow(
			run, r.Query, int32(r.RegionID),
			int32(r.Start), int32(r.End), int32(r.Length),
			r.Target, r.EValue,
		); err != nil {
			return fmt.Errorf("append refined region: %w", err)
		}
	}

	return appender.Flush()
}

func (s *Store) newAppender(table string) (*goduckdb.Appender, func(), error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create appender: %w", err)
	}

	cleanup := func() {
		appender.Close()
		conn.Close()
	}
	return appender, cleanup, nil
}

// RunCount returns the number of criterion lines stored for a run tag.
func (s *Store) RunCount(run string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM criteria_lines WHERE run = ?`, run).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count criteria lines: %w", err)
	}
	return count, nil
}
