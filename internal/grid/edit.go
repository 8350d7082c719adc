// ABOUTME: Edit application for mapping rows: normalization and attribution
// ABOUTME: Enforces that a single edit marks exactly one modified-by field

package grid

import (
	"fmt"
	"strings"

	"github.com/mappingdesk/skumap/internal/client"
)

// Edit is a set of field changes to apply to one row. Only fields the
// editor's department may touch are accepted.
type Edit map[string]string

// ApplyEdit returns a copy of row with the edit applied: identifier-like
// fields are trimmed and uppercased, sales_channel is title-cased, and
// the attribution fields are cleared then set to exactly the one
// matching the editor's department.
func ApplyEdit(row client.MappingRow, edit Edit, dept Department, email string) (client.MappingRow, error) {
	if !dept.CanModify() {
		return row, fmt.Errorf("department %s cannot edit rows", dept)
	}

	for field, value := range edit {
		if !CanEdit(dept, field) {
			return row, fmt.Errorf("department %s cannot edit %s", dept, field)
		}

		switch field {
		case FieldIMSKU:
			row.IMSKU = normalizeSKU(value)
		case FieldSalesChannel:
			row.SalesChannel = titleCase(value)
		case FieldLevel1:
			row.Level1 = normalizeSKU(value)
		case FieldLinworksTitle:
			row.LinworksTitle = strings.TrimSpace(value)
		case FieldComment:
			row.Comment = strings.TrimSpace(value)
		case FieldParentSKU:
			row.ParentSKU = normalizeSKU(value)
		case FieldCommentByFinance:
			row.CommentByFinance = strings.TrimSpace(value)
		}
	}

	row.ModifiedBy = nil
	row.ModifiedByFinance = nil
	row.ModifiedByAdmin = nil

	switch dept {
	case DeptSCM:
		row.ModifiedBy = &email
	case DeptFinance:
		row.ModifiedByFinance = &email
	case DeptAdmin:
		row.ModifiedByAdmin = &email
	}

	return row, nil
}

// normalizeSKU canonicalizes identifier-like fields so the backend's
// uniqueness counters see one spelling per SKU
func normalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// titleCase uppercases the first letter of each space-separated word and
// lowercases the rest ("amazon uk" becomes "Amazon Uk")
func titleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
