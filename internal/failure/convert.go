package failure

import (
	"errors"
	"io"
	"io/fs"
	"net"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/urlshortener/backend/internal/database"
)

// FromDatabase wraps a database or pool error.
func FromDatabase(err error) DatabaseFault { return DatabaseFault{Err: err} }

// FromIO wraps an I/O error.
func FromIO(err error) IOFault { return IOFault{Err: err} }

// FromError wraps any other error.
func FromError(err error) InternalFault { return InternalFault{Err: err} }

// Classify maps err onto a Kind. A Kind already present in the chain is
// returned unchanged, so handlers decide the kind at the point the error is
// produced and Classify only fills in the remainder:
//
//   - pgx, pgconn and connection-pool errors become DatabaseFault
//   - filesystem, stream and network errors become IOFault
//   - everything else becomes InternalFault
//
// Classify returns nil for a nil error.
func Classify(err error) Kind {
	if err == nil {
		return nil
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	switch {
	case isDatabase(err):
		return FromDatabase(err)
	case isIO(err):
		return FromIO(err)
	default:
		return FromError(err)
	}
}

// isDatabase is checked before isIO: pgconn wraps the net.Error of a dropped
// connection and that still belongs to the database.
func isDatabase(err error) bool {
	var (
		pgErr      *pgconn.PgError
		connectErr *pgconn.ConnectError
	)
	switch {
	case errors.As(err, &pgErr), errors.As(err, &connectErr):
		return true
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, pgx.ErrTxClosed), errors.Is(err, pgx.ErrTxCommitRollback):
		return true
	case database.IsPoolError(err):
		return true
	default:
		return pgconn.Timeout(err)
	}
}

func isIO(err error) bool {
	var (
		pathErr *fs.PathError
		linkErr *os.LinkError
		netErr  net.Error
	)
	switch {
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.As(err, &netErr):
		return true
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.ErrShortWrite), errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// FromValidation turns the result of validator.Struct into an
// UnprocessableEntity keyed by field name. An error that is not a
// validator.ValidationErrors is recorded under the "body" key.
func FromValidation(err error) UnprocessableEntity {
	d := NewDetails()
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			d.Add(fe.Field(), DescribeFieldError(fe))
		}
	case err != nil:
		d.Add("body", err.Error())
	}
	return UnprocessableEntity{Details: d}
}

// DescribeFieldError renders a validator.FieldError as a short sentence
// fragment such as "is required" or "must be at most 64 characters".
func DescribeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "url", "http_url":
		return "must be an http(s) URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "hostname", "hostname_rfc1123", "ip", "hostname|ip":
		return "must be a hostname or IP address"
	case "port":
		return "must be a valid port number"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
