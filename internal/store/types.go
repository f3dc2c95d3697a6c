package store

// User is a guard account. Password holds a bcrypt hash.
type User struct {
	ID            int64
	Username      string
	Email         string
	Password      string
	FullName      string
	Address       string
	ContactNumber string
	ProfilePhoto  string
	ResetToken    string
	ResetExpires  int64
	CreatedAt     int64
}

// Violation is a recorded incident. OccurredAt is unix milliseconds.
type Violation struct {
	ID            int64
	StudentID     string
	StudentName   string
	GradeLevel    string
	Section       string
	ViolationType string
	Status        string
	Confidence    *float64
	ReportedBy    string
	OccurredAt    int64
}

// Student is a face-registry entry.
type Student struct {
	ID         int64
	Name       string
	LRN        string
	GradeLevel string
	Section    string
	CreatedAt  int64
}

// Field selects the violation column a search matches against.
type Field int

const (
	FieldStudentName Field = iota
	FieldViolationType
)

func (f Field) column() string {
	if f == FieldViolationType {
		return "violation_type"
	}
	return "student_name"
}
