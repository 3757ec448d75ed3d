package params

import "time"

const (
	ServerBodyLimit    = 4194304 // 4 MiB, bulk CSV imports come through the API
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second

	DefaultAppVersion = "1.0.0" // stamped on audit events when no version is configured

	EventListDefaultLimit    = 50  // page size when the caller does not ask for one
	EventListMaxLimit        = 500 // hard cap on page size
	SummaryDefaultDays       = 7   // trailing window for summary statistics
	SummaryMaxDays           = 365
	UserHistoryDefaultDays   = 30
	UserHistoryMaxDays       = 365
	UserHistoryDefaultLimit  = 100
	UserHistoryMaxLimit      = 500
	ExportMaxRows            = 10000 // hard cap on CSV export size
	RetentionFloorDays       = 30    // cleanup requests below this are silently raised
	HighRiskThreshold        = 50    // events above this count as high risk in summaries
	NotableRiskThreshold     = 30    // events above this appear in the recent notable list
	SummaryTopN              = 10    // top source IPs / recent notable events per summary
	AlertRiskThreshold       = 50    // mail alert fires at or above this score
	SummaryCacheTTL          = 1 * time.Minute
	SummaryCacheKeyPrefix    = "sum:"
	AccessTokenExpiration    = 1 * time.Hour // admin JWT lifetime
	StudentImportChunkSize   = 200           // rows per INSERT .. ON CONFLICT batch
	StudentImportMaxRows     = 5000          // hard cap on rows per import request
	HealthCheckServerAddr    = ":3001"       // health check server address
	UnusualHourBefore        = 6             // local hour below this is scored as unusual
	UnusualHourAfter         = 22            // local hour above this is scored as unusual
)
