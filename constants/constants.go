package constants

import "time"

type DriverType string

const (
	MySQL   DriverType = "mysql"
	MongoDB DriverType = "mongodb"
)

const (
	ESDocumentID       = "_id"
	ESDocumentScore    = "_score"
	ESDefaultType      = "_doc"
	ESDefaultPageSize  = 1000
	ESDefaultQuerySize = 100

	// ESScrollKeepAlive is sent verbatim as the scroll duration
	ESScrollKeepAlive = "17m"

	MySQLDefaultPort       = 3306
	MySQLDefaultCharset    = "utf8mb4"
	MySQLDefaultPrimaryKey = "id"
	MySQLDefaultPageSize   = 1000

	// MySQLKeysetStart is lower than any valid (non-negative) primary key
	MySQLKeysetStart = -1

	ExportFileExt         = ".json"
	DefaultProgressEvery  = 10000
	DefaultConnectTimeout = 10 * time.Second
	DefaultLogTimeFormat  = "2006-01-02 15:04:05"
	EnvPrefix             = "DSKIT"
)

// viper keys
const (
	LogFile      = "LOG_FILE"
	LogAppend    = "LOG_APPEND"
	LogConsole   = "LOG_CONSOLE"
	LogLevel     = "LOG_LEVEL"
)
