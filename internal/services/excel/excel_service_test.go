package excel

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func uploadFixture(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

func TestParseContactListCSV(t *testing.T) {
	svc := NewExcelService()

	csv := []byte("Email,Name,Company,Position,Recruiter Name,Notes\n" +
		"jane@acme.com,Jane,Acme,Backend Engineer,Sam,referred\n" +
		"bob@beta.io,Bob,Beta,,,\n" +
		"not-an-email,Broken,,,,\n" +
		",,,,,\n")

	result, err := svc.ParseContactList(uploadFixture(t, "contacts.csv", csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.RecordsCount)
	assert.Equal(t, 2, result.SkippedRows)

	first := result.Contacts[0]
	assert.Equal(t, "jane@acme.com", first.Email)
	assert.Equal(t, "Jane", first.Name)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Backend Engineer", first.Role)
	assert.Equal(t, "Sam", first.RecruiterName)
	assert.Equal(t, "referred", first.Notes)
}

func TestParseContactListXLSX(t *testing.T) {
	svc := NewExcelService()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"E-Mail", "Full Name", "Organization"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"jane@acme.com", "Jane", "Acme"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := svc.ParseContactList(uploadFixture(t, "contacts.xlsx", buf.Bytes()))
	require.NoError(t, err)

	require.Len(t, result.Contacts, 1)
	assert.Equal(t, "jane@acme.com", result.Contacts[0].Email)
	assert.Equal(t, "Jane", result.Contacts[0].Name)
	assert.Equal(t, "Acme", result.Contacts[0].Company)
}

func TestParseContactListRequiresEmailColumn(t *testing.T) {
	svc := NewExcelService()

	csv := []byte("Name,Company\nJane,Acme\n")
	_, err := svc.ParseContactList(uploadFixture(t, "contacts.csv", csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no email column")
}

func TestParseContactListUnsupportedExtension(t *testing.T) {
	svc := NewExcelService()

	_, err := svc.ParseContactList(uploadFixture(t, "contacts.txt", []byte("whatever")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestParseContactListHeaderOnly(t *testing.T) {
	svc := NewExcelService()

	_, err := svc.ParseContactList(uploadFixture(t, "contacts.csv", []byte("Email\n")))
	require.Error(t, err)
}
