// ABOUTME: Department identities and the field-level edit permission matrix
// ABOUTME: Determines which mapping fields each department may change

package grid

import "strings"

// Department identifies the editing role carried in the access token
type Department string

const (
	DeptSCM      Department = "SCM"
	DeptFinance  Department = "FINANCE"
	DeptAdmin    Department = "ADMIN"
	DeptReadOnly Department = "READ_ONLY"
)

// ParseDepartment normalizes a department claim. Unknown values map to
// READ_ONLY so an unrecognized role can never edit anything.
func ParseDepartment(s string) Department {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SCM":
		return DeptSCM
	case "FINANCE":
		return DeptFinance
	case "ADMIN":
		return DeptAdmin
	default:
		return DeptReadOnly
	}
}

// CanModify reports whether the department may change rows at all
func (d Department) CanModify() bool {
	return d == DeptSCM || d == DeptFinance || d == DeptAdmin
}

// Field names editable through the grid
const (
	FieldIMSKU            = "im_sku"
	FieldSalesChannel     = "sales_channel"
	FieldLevel1           = "level_1"
	FieldLinworksTitle    = "linworks_title"
	FieldComment          = "comment"
	FieldParentSKU        = "parent_sku"
	FieldCommentByFinance = "comment_by_finance"
)

// scmFields and financeFields are the department-owned editable columns
var scmFields = map[string]bool{
	FieldIMSKU:         true,
	FieldSalesChannel:  true,
	FieldLevel1:        true,
	FieldLinworksTitle: true,
	FieldComment:       true,
}

var financeFields = map[string]bool{
	FieldParentSKU:        true,
	FieldCommentByFinance: true,
}

// CanEdit reports whether a department may edit the named field. Admin
// edits every department-owned field, SCM and Finance only their own,
// and READ_ONLY nothing. Source fields are never editable.
func CanEdit(dept Department, field string) bool {
	switch dept {
	case DeptAdmin:
		return scmFields[field] || financeFields[field]
	case DeptSCM:
		return scmFields[field]
	case DeptFinance:
		return financeFields[field]
	default:
		return false
	}
}

// EditableFields lists the fields the department may edit, in grid
// column order
func EditableFields(dept Department) []string {
	order := []string{
		FieldIMSKU,
		FieldSalesChannel,
		FieldLevel1,
		FieldLinworksTitle,
		FieldComment,
		FieldParentSKU,
		FieldCommentByFinance,
	}

	var fields []string
	for _, f := range order {
		if CanEdit(dept, f) {
			fields = append(fields, f)
		}
	}
	return fields
}
