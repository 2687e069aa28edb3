package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// ErrInvalidIdentifier is returned when a relation name is not a plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Relation names and column shapes of the catalog.
const (
	MediaTable    = "MEDIA"
	ClassTable    = "CLASS"
	JunctionTable = "JUNCTION"
)

var (
	MediaColumns = []string{
		"imageID INTEGER PRIMARY KEY AUTOINCREMENT",
		"hash TEXT NOT NULL UNIQUE",
		"path TEXT NOT NULL",
		"hidden INTEGER NOT NULL DEFAULT 0",
	}
	ClassColumns = []string{
		"classID INTEGER PRIMARY KEY AUTOINCREMENT",
		"class TEXT NOT NULL UNIQUE",
	}
	JunctionColumns = []string{
		"imageID INTEGER NOT NULL REFERENCES MEDIA(imageID) ON DELETE CASCADE",
		"classID INTEGER NOT NULL REFERENCES CLASS(classID) ON DELETE CASCADE",
		"PRIMARY KEY (imageID, classID)",
	}
)

// CreateTable ensures the relation exists with the given ordered column
// definitions. Definitions are DDL and cannot be bound as parameters, so
// only the relation name is validated; callers pass trusted definitions.
// A pre-existing relation is left untouched, whatever its shape.
func CreateTable(db *gorm.DB, name string, columns ...string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %s requires at least one column", name)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(columns, ", "))
	if err := db.Exec(query).Error; err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	return nil
}

// DSN appends the connection pragmas every catalog database is opened with.
// Foreign keys are enforced so JUNCTION rows follow their MEDIA and CLASS rows.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Bootstrap creates the three catalog relations in dependency order.
func Bootstrap(db *gorm.DB) error {
	if err := CreateTable(db, MediaTable, MediaColumns...); err != nil {
		return err
	}
	if err := CreateTable(db, ClassTable, ClassColumns...); err != nil {
		return err
	}
	return CreateTable(db, JunctionTable, JunctionColumns...)
}

// Teardown drops the catalog relations, dependents first.
func Teardown(db *gorm.DB) error {
	for _, name := range []string{JunctionTable, ClassTable, MediaTable} {
		if err := db.Exec("DROP TABLE IF EXISTS " + name).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", name, err)
		}
	}
	return nil
}
