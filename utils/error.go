package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorNotAuthorized is returned by the authorization gate when the caller is
// neither privileged nor the trip's responsible party.
var ErrorNotAuthorized = errors.New("not authorized")

// IsDuplicateKeyErr reports whether err is a MySQL duplicate-entry error (1062).
func IsDuplicateKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
