package errors

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (field)=(value) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table ..."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// "... is not present in table ..."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError classifies storage errors into framework failures:
//   - context deadline / cancellation → timeout / canceled
//   - pgx.ErrNoRows → not-found
//   - unique violation → conflict
//   - foreign key violation → foreign-key
//   - check / not-null violation → validation
//   - any other *pgconn.PgError → internal
//
// Unrecognised errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, KindTimeout, "Request timed out. Please try again.")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, KindCanceled, "Request was canceled.")
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Wrap(err, KindNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) *Failure {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, KindForeignKey, foreignKeyMessage(pgErr))
	case pgerrcode.CheckViolation:
		return mapColumnViolation(pgErr, "This field has an invalid value.", "Invalid data. Please check your input.")
	case pgerrcode.NotNullViolation:
		return mapColumnViolation(pgErr, "This field is required.", "Required field is missing. Please check your input.")
	default:
		return Wrap(pgErr, KindInternal, "A database error occurred. Please try again.")
	}
}

func mapUniqueViolation(pgErr *pgconn.PgError) *Failure {
	field := pgErr.ColumnName
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}
	if field == "" {
		field = inferFieldFromConstraint(pgErr.ConstraintName)
	}

	return newFailure(KindConflict, "This value already exists. Please choose a different one.", pgErr, field)
}

// mapColumnViolation builds a validation failure, attaching the column as the
// field when Postgres reports one.
func mapColumnViolation(pgErr *pgconn.PgError, fieldMsg, genericMsg string) *Failure {
	if pgErr.ColumnName != "" {
		return newFailure(KindValidation, fieldMsg, pgErr, pgErr.ColumnName)
	}
	return newFailure(KindValidation, genericMsg, pgErr, "")
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if pgErr.Detail != "" {
		if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return "Cannot delete because this item is in use by " + humanizeTable(m[1]) + "."
		}
		if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return "Cannot complete operation because the referenced " + humanizeTable(m[1]) + " does not exist."
		}
	}
	if pgErr.TableName != "" {
		return "Cannot complete operation because this item is in use by " + humanizeTable(pgErr.TableName) + "."
	}
	return "Cannot complete operation because this item is in use."
}

// inferFieldFromConstraint guesses the column from names like "users_email_key".
// Multi-column and expression constraints are ambiguous and yield "".
func inferFieldFromConstraint(constraintName string) string {
	parts := strings.Split(constraintName, "_")
	if len(parts) != 3 {
		return ""
	}
	candidate := parts[1]
	if isFunctionName(candidate) {
		return ""
	}
	return candidate
}

// humanizeTable turns "payment_methods" into "Payment Methods".
func humanizeTable(table string) string {
	words := strings.Fields(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(table)), "_", " "))
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-32) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var sqlFunctionNames = []string{
	"lower", "upper", "trim", "ltrim", "rtrim",
	"md5", "sha1", "sha256", "encode", "decode",
}

func isFunctionName(s string) bool {
	return slices.Contains(sqlFunctionNames, strings.ToLower(s))
}
