package jdbc

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/utils/logger"
)

// QuoteIdentifier returns the properly quoted identifier based on database driver
func QuoteIdentifier(identifier string, driver constants.DriverType) string {
	switch driver {
	case constants.MySQL:
		// MySQL uses backticks; a backtick inside the name is doubled
		return fmt.Sprintf("`%s`", strings.ReplaceAll(identifier, "`", "``"))
	default:
		return identifier
	}
}

// QuoteTable quotes a table name that may be qualified as schema.table
func QuoteTable(table string, driver constants.DriverType) string {
	parts := strings.Split(table, ".")
	return strings.Join(QuoteColumns(parts, driver), ".")
}

// QuoteColumns returns a slice of quoted column names
func QuoteColumns(columns []string, driver constants.DriverType) []string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = QuoteIdentifier(col, driver)
	}
	return quoted
}

// MySQLDropTableQuery drops the table when it exists
func MySQLDropTableQuery(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteTable(table, constants.MySQL))
}

// MySQLTruncateQuery removes every row of the table
func MySQLTruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", QuoteTable(table, constants.MySQL))
}

// MySQLCountQuery counts the rows of the table
func MySQLCountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", QuoteTable(table, constants.MySQL))
}

// MySQLInsertQuery returns a parameterized INSERT for the given columns
func MySQLInsertQuery(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteTable(table, constants.MySQL),
		strings.Join(QuoteColumns(columns, constants.MySQL), ", "),
		placeholders,
	)
}

// MySQLSelectByKeyQuery selects every row whose key column equals the argument
func MySQLSelectByKeyQuery(table, key string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = ?",
		QuoteTable(table, constants.MySQL), QuoteIdentifier(key, constants.MySQL))
}

// MySQLDeleteByKeyQuery deletes every row whose key column equals the argument
func MySQLDeleteByKeyQuery(table, key string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		QuoteTable(table, constants.MySQL), QuoteIdentifier(key, constants.MySQL))
}

// MySQLKeysetScanQuery builds one page of a keyset scan:
//
//	SELECT * FROM t WHERE c1 = ? AND ... AND pk > ? ORDER BY pk LIMIT ?
//
// Arguments are the condition values in the order of conditionColumns,
// followed by the last seen key and the page size.
func MySQLKeysetScanQuery(table, primaryKey string, conditionColumns []string) string {
	quotedKey := QuoteIdentifier(primaryKey, constants.MySQL)

	predicates := make([]string, 0, len(conditionColumns)+1)
	for _, col := range QuoteColumns(conditionColumns, constants.MySQL) {
		predicates = append(predicates, fmt.Sprintf("%s = ?", col))
	}
	predicates = append(predicates, fmt.Sprintf("%s > ?", quotedKey))

	return fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s LIMIT ?",
		QuoteTable(table, constants.MySQL), strings.Join(predicates, " AND "), quotedKey)
}

// MySQLVersion returns the version of the MySQL server
// It returns the flavor, major and minor version of the MySQL server
func MySQLVersion(ctx context.Context, client *sqlx.DB) (string, int, int, error) {
	var version string
	err := client.QueryRowContext(ctx, "SELECT @@version").Scan(&version)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to get MySQL version: %s", err)
	}
	return ParseMySQLVersion(version)
}

// ParseMySQLVersion splits a server version string such as
// "10.5.8-MariaDB-1:10.5.8+maria~focal" into flavor, major and minor.
func ParseMySQLVersion(version string) (string, int, int, error) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return "", 0, 0, fmt.Errorf("invalid version format")
	}
	majorVersion, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid major version: %s", err)
	}

	minorVersion, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid minor version: %s", err)
	}

	mysqlFlavor := "MySQL"
	if strings.Contains(strings.ToUpper(version), "MARIADB") {
		mysqlFlavor = "MariaDB"
	}

	return mysqlFlavor, majorVersion, minorVersion, nil
}

// WithTx runs fn inside a transaction, committing when fn succeeds
func WithTx(ctx context.Context, client *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := client.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %s", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && rerr != sql.ErrTxDone {
			logger.Errorf("transaction rollback failed: %s", rerr)
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
