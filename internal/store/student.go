package store

import "time"

// InsertStudent registers s and sets its ID. Returns ErrDuplicate for a known LRN.
func (db *DB) InsertStudent(s *Student) error {
	s.CreatedAt = time.Now().UnixMilli()
	res, err := db.Exec(`
		INSERT INTO students (name, lrn, grade_level, section, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.Name, s.LRN, s.GradeLevel, s.Section, s.CreatedAt)
	if err != nil {
		return mapConstraint(err)
	}
	s.ID, err = res.LastInsertId()
	return err
}

// StudentByLRN looks up a registered student.
func (db *DB) StudentByLRN(lrn string) (*Student, error) {
	var s Student
	err := db.QueryRow(`SELECT id, name, lrn, grade_level, section, created_at FROM students WHERE lrn = ?`, lrn).
		Scan(&s.ID, &s.Name, &s.LRN, &s.GradeLevel, &s.Section, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
