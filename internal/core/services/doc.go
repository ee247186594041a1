// Package services implements the driving ports on top of the driven ones.
//
// Single uploads, batches and the watch command share one ingest Pipeline:
// duplicate check, extraction, persistence, then optional artifacts. The
// Orchestrator runs it over many files and builds the BatchReport.
package services
