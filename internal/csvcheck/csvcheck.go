// ABOUTME: Pre-upload validation for bulk mapping CSV files
// ABOUTME: Checks required headers, record count limit, and delimiter detection

package csvcheck

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxRecords is the largest number of data records accepted per upload
const MaxRecords = 1000

// RequiredFields are the column headers every bulk upload must carry.
// Matching is case-insensitive.
var RequiredFields = []string{
	"ID",
	"Date",
	"Marketplace SKU",
	"ASIN",
	"Linnworks SKU",
	"Parent SKU",
	"Region",
	"Sales Channel",
	"Linnworks Category",
	"Amazon Title",
	"Linnworks Title",
}

// Result is the outcome of validating a CSV file before upload
type Result struct {
	IsValid       bool
	Message       string
	MissingFields []string
}

var lineSplit = regexp.MustCompile(`\r\n|\n`)

// Validate checks a raw CSV file for upload readiness: it must have a
// header row carrying every required field, at least one data record,
// and no more than MaxRecords records. Both tab and comma delimited
// files are accepted; a tab in the header selects tab splitting.
func Validate(content string) Result {
	lines := lineSplit.Split(content, -1)

	if len(lines) < 2 || (len(lines) == 2 && strings.TrimSpace(lines[1]) == "") {
		return Result{
			IsValid: false,
			Message: "CSV file must contain at least one record besides the header",
		}
	}

	if len(lines)-1 > MaxRecords {
		return Result{
			IsValid: false,
			Message: fmt.Sprintf("CSV file exceeds the maximum allowed %d records.", MaxRecords),
		}
	}

	headers := splitHeader(lines[0])
	missing := missingFields(headers)
	if len(missing) > 0 {
		return Result{
			IsValid:       false,
			Message:       "CSV file is missing required fields",
			MissingFields: missing,
		}
	}

	return Result{IsValid: true, Message: "CSV file is valid"}
}

// splitHeader splits the header row, preferring tab over comma when the
// row contains tabs (spreadsheet exports commonly produce TSV)
func splitHeader(header string) []string {
	header = strings.TrimSpace(header)

	delimiter := ","
	if strings.Contains(header, "\t") {
		delimiter = "\t"
	}

	fields := strings.Split(header, delimiter)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// missingFields returns the required fields absent from the header row
func missingFields(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.ToLower(h)] = true
	}

	var missing []string
	for _, field := range RequiredFields {
		if !present[strings.ToLower(field)] {
			missing = append(missing, field)
		}
	}
	return missing
}
