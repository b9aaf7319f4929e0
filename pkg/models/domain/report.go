package domain

import "time"

// Report is a printable description of a resource
type Report struct {
	Title       string
	GeneratedAt time.Time
	Sections    []ReportSection
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

// ReportDetail is one row of a section table
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
