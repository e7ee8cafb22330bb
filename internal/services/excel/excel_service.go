package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/raakesh-m/autosendr-backend/internal/models"
)

// Service parses uploaded contact lists (.xlsx or .csv) into contacts
type Service struct{}

// NewExcelService creates a new Excel service instance
func NewExcelService() *Service {
	return &Service{}
}

// ImportResult contains the result of an import operation
type ImportResult struct {
	Contacts     []models.Contact
	RecordsCount int
	SkippedRows  int
}

// Recognized column headers, matched case-insensitively
var headerAliases = map[string]string{
	"email":          "email",
	"e-mail":         "email",
	"mail":           "email",
	"name":           "name",
	"full name":      "name",
	"company":        "company",
	"organization":   "company",
	"role":           "role",
	"position":       "role",
	"job title":      "role",
	"recruiter":      "recruiter_name",
	"recruiter name": "recruiter_name",
	"recruiter_name": "recruiter_name",
	"notes":          "notes",
}

// ParseContactList parses an uploaded .xlsx or .csv file into contacts.
// The first row must be a header row containing at least an email column.
func (s *Service) ParseContactList(fileHeader *multipart.FileHeader) (*ImportResult, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".xlsx":
		return s.parseExcel(file)
	case ".csv":
		return s.parseCSV(file)
	default:
		return nil, fmt.Errorf("unsupported file type '%s': expected .xlsx or .csv", ext)
	}
}

func (s *Service) parseExcel(reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheets[0], err)
	}

	return s.rowsToContacts(rows)
}

func (s *Service) parseCSV(reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // Tolerate ragged rows

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	return s.rowsToContacts(rows)
}

func (s *Service) rowsToContacts(rows [][]string) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must contain a header row and at least one contact")
	}

	columns := make(map[int]string)
	for i, header := range rows[0] {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(header))]; ok {
			columns[i] = field
		}
	}

	hasEmail := false
	for _, field := range columns {
		if field == "email" {
			hasEmail = true
			break
		}
	}
	if !hasEmail {
		return nil, fmt.Errorf("no email column found in header row")
	}

	result := &ImportResult{}
	for _, row := range rows[1:] {
		contact := models.Contact{}
		for i, cell := range row {
			field, ok := columns[i]
			if !ok {
				continue
			}
			value := strings.TrimSpace(cell)
			switch field {
			case "email":
				contact.Email = value
			case "name":
				contact.Name = value
			case "company":
				contact.Company = value
			case "role":
				contact.Role = value
			case "recruiter_name":
				contact.RecruiterName = value
			case "notes":
				contact.Notes = value
			}
		}
		if contact.Email == "" || !strings.Contains(contact.Email, "@") {
			result.SkippedRows++
			continue
		}
		result.Contacts = append(result.Contacts, contact)
	}

	result.RecordsCount = len(result.Contacts)
	if result.RecordsCount == 0 {
		return nil, fmt.Errorf("no valid contacts found in file")
	}
	return result, nil
}
