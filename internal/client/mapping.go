// ABOUTME: Mapping endpoint types and calls for the SKU mapping backend
// ABOUTME: Covers dashboard fetch, row update, bulk save, and multipart CSV upload

package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// MappingRow is one product-SKU cross-reference record under
// reconciliation. Source fields are immutable; the editable fields are
// owned per department (SCM or Finance), with Admin allowed everywhere.
type MappingRow struct {
	ID string `json:"id"`

	// Source fields (immutable)
	Date           string `json:"date"`
	MarketplaceSKU string `json:"marketplace_sku"`
	ASIN           string `json:"asin"`
	Region         string `json:"region"`
	AmazonTitle    string `json:"amazon_title"`

	// SCM-owned
	IMSKU         string `json:"im_sku"`
	SalesChannel  string `json:"sales_channel"`
	Level1        string `json:"level_1"`
	LinworksTitle string `json:"linworks_title"`
	Comment       string `json:"comment"`

	// Finance-owned
	ParentSKU        string `json:"parent_sku"`
	CommentByFinance string `json:"comment_by_finance"`

	// Attribution: at most one is non-null after any single edit
	ModifiedBy        *string `json:"modified_by"`
	ModifiedByFinance *string `json:"modified_by_finance"`
	ModifiedByAdmin   *string `json:"modified_by_admin"`
}

// KpiSnapshot holds the server-computed aggregate counters describing
// mapping completeness. Read-only on the client.
type KpiSnapshot struct {
	NullIMSKU                 int `json:"null_im_sku"`
	UniqueIMSKU               int `json:"unique_im_sku"`
	UniqueMarketplaceSKU      int `json:"unique_marketplace_sku"`
	UniqueRegions             int `json:"unique_regions"`
	LinTitleToBeMapped        int `json:"lin_title_to_be_mapped"`
	LinCategoryToBeMapped     int `json:"lin_category_to_be_mapped"`
	NullParentSKU             int `json:"null_parent_sku"`
	UniqueParentSKU           int `json:"unique_parent_sku"`
	UniqueIMSKUAbandonedItems int `json:"unique_im_sku_hvng_abondoned_items"`
}

// DashboardResponse is the /dashboard payload: rows plus KPI aggregates
type DashboardResponse struct {
	MappingData []MappingRow `json:"mapping_data"`
	KpiSnapshot
}

// SaveResult reports the outcome of a bulk save
type SaveResult struct {
	Message      string `json:"message"`
	RowsInserted int    `json:"rows_inserted"`
	RowsSkipped  int    `json:"rows_skipped_due_to_missing_fields"`
	Timestamp    string `json:"timestamp"`
}

// UploadResult reports the outcome of a bulk CSV upload
type UploadResult struct {
	Message       string `json:"message"`
	RowsProcessed int    `json:"rows_processed"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Dashboard calls GET /dashboard
func (c *Client) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.get(ctx, "/dashboard", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecomputeMapping calls GET /new_mapping, which triggers server-side
// recomputation of the mapping set. Returns the status message; callers
// re-fetch the dashboard on "success".
func (c *Client) RecomputeMapping(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.get(ctx, "/new_mapping", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SaveMapping calls POST /save_mapping/ with the full current row set.
// This is the irreversible bulk save; callers gate it behind explicit
// confirmation.
func (c *Client) SaveMapping(ctx context.Context, rows []MappingRow) (*SaveResult, error) {
	body := struct {
		MappingData []MappingRow `json:"mapping_data"`
	}{MappingData: rows}

	var resp SaveResult
	if err := c.postJSON(ctx, "/save_mapping/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type updateRowRequest struct {
	MappingRow
	Department string `json:"department"`
}

type updateRowResponse struct {
	MappingRow
	Message string `json:"message"`
}

// UpdateRow calls PUT /update_mapping/{id} with the row and the editor's
// department context. Returns the server's authoritative row, which the
// grid merges back into its state.
func (c *Client) UpdateRow(ctx context.Context, row MappingRow, department string) (*MappingRow, error) {
	if row.ID == "" {
		return nil, fmt.Errorf("row has no id")
	}

	var resp updateRowResponse
	path := "/update_mapping/" + row.ID
	if err := c.putJSON(ctx, path, updateRowRequest{MappingRow: row, Department: department}, &resp); err != nil {
		return nil, err
	}
	return &resp.MappingRow, nil
}

// UploadBulk calls POST /update_mapping_bulk/ with the raw CSV file and
// the uploader's department and email as multipart form fields.
func (c *Client) UploadBulk(ctx context.Context, filename string, fileData []byte, department, userEmail string) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(fileData); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.WriteField("department", department); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.WriteField("user_email", userEmail); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update_mapping_bulk/", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp UploadResult
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
