// ABOUTME: Tests for the validate command
// ABOUTME: Verifies exit codes for valid, invalid, and unreadable files

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validHeader = "ID,Date,Marketplace SKU,ASIN,Linnworks SKU,Parent SKU,Region,Sales Channel,Linnworks Category,Amazon Title,Linnworks Title"

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestRunValidate_ValidFile(t *testing.T) {
	path := writeTempCSV(t, validHeader+"\n1,2026-01-01,MKT,ASIN,LIN,PAR,UK,Ch,Cat,T1,T2")

	var buf bytes.Buffer
	if code := runValidate(path, &buf); code != 0 {
		t.Errorf("expected exit code 0, got %d; output: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "CSV file is valid") {
		t.Errorf("expected valid message, got: %s", buf.String())
	}
}

func TestRunValidate_MissingFields(t *testing.T) {
	header := strings.Replace(validHeader, "ASIN,", "", 1)
	path := writeTempCSV(t, header+"\n1,2026-01-01,MKT,LIN,PAR,UK,Ch,Cat,T1,T2")

	var buf bytes.Buffer
	if code := runValidate(path, &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "ASIN") {
		t.Errorf("expected missing field listed, got: %s", buf.String())
	}
}

func TestRunValidate_HeaderOnly(t *testing.T) {
	path := writeTempCSV(t, validHeader)

	var buf bytes.Buffer
	if code := runValidate(path, &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestRunValidate_UnreadableFile(t *testing.T) {
	var buf bytes.Buffer
	if code := runValidate(filepath.Join(t.TempDir(), "missing.csv"), &buf); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestRunValidate_JSONOutput(t *testing.T) {
	path := writeTempCSV(t, validHeader+"\n1,2026-01-01,MKT,ASIN,LIN,PAR,UK,Ch,Cat,T1,T2")

	jsonOutput = true
	defer func() { jsonOutput = false }()

	var buf bytes.Buffer
	if code := runValidate(path, &buf); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(buf.String(), `"valid": true`) {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}
