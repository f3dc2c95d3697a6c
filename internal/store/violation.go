package store

import (
	"database/sql"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	suggestionLimit = 10
	searchLimit     = 50
)

const violationColumns = `id, student_id, student_name, grade_level, section, violation_type,
	status, confidence, reported_by, occurred_at`

// InsertViolation records v and sets its ID. A zero OccurredAt means now.
func (db *DB) InsertViolation(v *Violation) error {
	if v.OccurredAt == 0 {
		v.OccurredAt = time.Now().UnixMilli()
	}
	if v.Status == "" {
		v.Status = "pending"
	}
	v.StudentName = norm.NFC.String(v.StudentName)
	v.ViolationType = norm.NFC.String(v.ViolationType)
	res, err := db.Exec(`
		INSERT INTO violations (student_id, student_name, grade_level, section, violation_type,
			status, confidence, reported_by, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.StudentID, v.StudentName, v.GradeLevel, v.Section, v.ViolationType,
		v.Status, v.Confidence, v.ReportedBy, v.OccurredAt)
	if err != nil {
		return err
	}
	v.ID, err = res.LastInsertId()
	return err
}

// Suggestions returns up to 10 distinct values of field starting with
// prefix, sorted ascending. Prefixes shorter than two characters yield nothing.
func (db *DB) Suggestions(field Field, prefix string) ([]string, error) {
	prefix = normalizeQuery(prefix)
	if utf8.RuneCountInString(prefix) < 2 {
		return []string{}, nil
	}
	col := field.column()
	rows, err := db.Query(`
		SELECT DISTINCT `+col+` AS suggestion
		FROM violations
		WHERE `+col+` LIKE ? ESCAPE '\'
		ORDER BY suggestion ASC
		LIMIT ?`, likePattern("", prefix, "%"), suggestionLimit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SearchViolations returns up to 50 violations whose field contains query,
// newest first.
func (db *DB) SearchViolations(field Field, query string) ([]Violation, error) {
	query = normalizeQuery(query)
	rows, err := db.Query(`
		SELECT `+violationColumns+`
		FROM violations
		WHERE `+field.column()+` LIKE ? ESCAPE '\'
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, likePattern("%", query, "%"), searchLimit)
	if err != nil {
		return nil, err
	}
	return scanViolations(rows)
}

// ListViolations returns violations newest first. limit <= 0 means all.
func (db *DB) ListViolations(limit int) ([]Violation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT `+violationColumns+`
		FROM violations
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanViolations(rows)
}

func scanViolations(rows *sql.Rows) ([]Violation, error) {
	defer func() { _ = rows.Close() }()

	out := []Violation{}
	for rows.Next() {
		var v Violation
		var conf sql.NullFloat64
		if err := rows.Scan(&v.ID, &v.StudentID, &v.StudentName, &v.GradeLevel, &v.Section,
			&v.ViolationType, &v.Status, &conf, &v.ReportedBy, &v.OccurredAt); err != nil {
			return nil, err
		}
		if conf.Valid {
			c := conf.Float64
			v.Confidence = &c
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
